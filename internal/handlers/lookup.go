// internal/handlers/lookup.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mlft9/perimapp/internal/i18n"
	"github.com/mlft9/perimapp/internal/lookup"
	"github.com/mlft9/perimapp/internal/utils"
)

type LookupHandler struct {
	client *lookup.Client
}

func NewLookupHandler(client *lookup.Client) *LookupHandler {
	return &LookupHandler{client: client}
}

// GET /lookup/:barcode
//
// A barcode the product database does not know is a normal outcome, not an
// error: the response reports found=false and the client falls back to
// manual entry.
func (h *LookupHandler) GetByBarcode(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	barcode := c.Param("barcode")
	if barcode == "" {
		utils.BadRequestResponse(c, "barcode is required", nil)
		return
	}

	data := h.client.FetchByBarcode(c.Request.Context(), barcode)
	if data == nil {
		utils.SuccessResponse(c, gin.H{
			"found":   false,
			"message": i18n.T(lang, i18n.KeyLookupNotFound),
		})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"found":   true,
		"product": data,
	})
}
