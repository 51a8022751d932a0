package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler manages the product catalog and size variants.
type CatalogHandler struct {
	catalogRepo repositories.CatalogRepository
	db          repositories.TxBeginner
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cr repositories.CatalogRepository, db repositories.TxBeginner) *CatalogHandler {
	return &CatalogHandler{catalogRepo: cr, db: db}
}

// GetProducts handles GET /products. The POS passes active_only=true.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	products, err := h.catalogRepo.GetProducts(activeOnly)
	if err != nil {
		utils.LogError(err, "GetProducts: Error from catalogRepo.GetProducts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch products.", "Internal error"))
		return
	}

	// The register renders size pickers inline, so sizes ride along.
	for i := range products {
		sizes, err := h.catalogRepo.GetSizesByProductID(products[i].ID)
		if err != nil {
			utils.LogError(err, "GetProducts: Error fetching sizes")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch product sizes.", "Internal error"))
			return
		}
		products[i].Sizes = sizes
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

// GetProductByID handles GET /products/:id.
func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	product, err := h.catalogRepo.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", ""))
		} else {
			utils.LogError(err, "GetProductByID: Error from catalogRepo.GetProductByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch product.", "Internal error"))
		}
		return
	}

	sizes, err := h.catalogRepo.GetSizesByProductID(productID)
	if err != nil {
		utils.LogError(err, "GetProductByID: Error fetching sizes")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch product sizes.", "Internal error"))
		return
	}
	product.Sizes = sizes
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	product.Active = true

	tx, err := h.db.BeginTx()
	if err != nil {
		utils.LogError(err, "CreateProduct: Failed to begin transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product.", "Internal error"))
		return
	}
	defer tx.Rollback()

	if _, err := h.catalogRepo.CreateProduct(tx, &product); err != nil {
		utils.LogError(err, "CreateProduct: Error from catalogRepo.CreateProduct")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product.", "Internal error"))
		return
	}

	// Sizes supplied inline are created with the product.
	for i := range product.Sizes {
		product.Sizes[i].ProductID = product.ID
		if _, err := h.catalogRepo.CreateProductSize(tx, &product.Sizes[i]); err != nil {
			utils.LogError(err, "CreateProduct: Error creating product size")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product size.", "Internal error"))
			return
		}
	}

	if err := tx.Commit(); err != nil {
		utils.LogError(err, "CreateProduct: Failed to commit transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	product.ID = productID

	tx, err := h.db.BeginTx()
	if err != nil {
		utils.LogError(err, "UpdateProduct: Failed to begin transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update product.", "Internal error"))
		return
	}
	defer tx.Rollback()

	if err := h.catalogRepo.UpdateProduct(tx, &product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", ""))
		} else {
			utils.LogError(err, "UpdateProduct: Error from catalogRepo.UpdateProduct")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update product.", "Internal error"))
		}
		return
	}
	if err := tx.Commit(); err != nil {
		utils.LogError(err, "UpdateProduct: Failed to commit transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update product.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id. Products referenced by past
// orders cannot be removed; deactivate them instead.
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	tx, err := h.db.BeginTx()
	if err != nil {
		utils.LogError(err, "DeleteProduct: Failed to begin transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete product.", "Internal error"))
		return
	}
	defer tx.Rollback()

	if err := h.catalogRepo.DeleteProduct(tx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Product is referenced by existing orders; deactivate it instead.", ""))
		}
		return
	}
	if err := tx.Commit(); err != nil {
		utils.LogError(err, "DeleteProduct: Failed to commit transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete product.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CreateProductSize handles POST /products/:id/sizes.
func (h *CatalogHandler) CreateProductSize(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	var size models.ProductSize
	if err := c.ShouldBindJSON(&size); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	size.ProductID = productID

	if _, err := h.catalogRepo.GetProductByID(productID); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", ""))
		return
	}

	tx, err := h.db.BeginTx()
	if err != nil {
		utils.LogError(err, "CreateProductSize: Failed to begin transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product size.", "Internal error"))
		return
	}
	defer tx.Rollback()

	if _, err := h.catalogRepo.CreateProductSize(tx, &size); err != nil {
		utils.LogError(err, "CreateProductSize: Error from catalogRepo.CreateProductSize")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product size.", "Internal error"))
		return
	}
	if err := tx.Commit(); err != nil {
		utils.LogError(err, "CreateProductSize: Failed to commit transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create product size.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, size)
}

// DeleteProductSize handles DELETE /products/sizes/:sizeID.
func (h *CatalogHandler) DeleteProductSize(c *gin.Context) {
	sizeID, err := strconv.ParseInt(c.Param("sizeID"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid size ID format.", err.Error()))
		return
	}

	tx, err := h.db.BeginTx()
	if err != nil {
		utils.LogError(err, "DeleteProductSize: Failed to begin transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete product size.", "Internal error"))
		return
	}
	defer tx.Rollback()

	if err := h.catalogRepo.DeleteProductSize(tx, sizeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product size not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Size is referenced by existing orders.", ""))
		}
		return
	}
	if err := tx.Commit(); err != nil {
		utils.LogError(err, "DeleteProductSize: Failed to commit transaction")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete product size.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
