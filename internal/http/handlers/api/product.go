package api

import (
	"github.com/paybridge-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ProductList 列出全部商品
func (h *Handler) ProductList(c *gin.Context) {
	products, err := h.ProductService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "查询商品列表失败", err)
		return
	}
	response.Success(c, gin.H{"list": products})
}
