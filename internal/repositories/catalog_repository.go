package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// CatalogRepository defines the interface for the product catalog.
type CatalogRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(productID int64) (*models.Product, error)
	GetProducts(activeOnly bool) ([]models.Product, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeleteProduct(executor SQLExecutor, productID int64) error

	CreateProductSize(executor SQLExecutor, size *models.ProductSize) (int64, error)
	GetSizesByProductID(productID int64) ([]models.ProductSize, error)
	GetSizeByID(sizeID int64) (*models.ProductSize, error)
	DeleteProductSize(executor SQLExecutor, sizeID int64) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (category, name, base_price, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := executor.QueryRow(query,
		product.Category, product.Name, product.BasePrice, product.Active,
		product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func (r *catalogRepository) GetProductByID(productID int64) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT id, category, name, base_price, active, created_at, updated_at
	          FROM products WHERE id = $1`
	err := r.db.QueryRow(query, productID).Scan(
		&p.ID, &p.Category, &p.Name, &p.BasePrice, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, productID, err)
	}
	return p, nil
}

func (r *catalogRepository) GetProducts(activeOnly bool) ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT id, category, name, base_price, active, created_at, updated_at
	          FROM products`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.BasePrice, &p.Active, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *catalogRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products
	          SET category = $1, name = $2, base_price = $3, active = $4, updated_at = $5
	          WHERE id = $6`
	product.UpdatedAt = time.Now()

	result, err := executor.Exec(query,
		product.Category, product.Name, product.BasePrice, product.Active, product.UpdatedAt, product.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for product update ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteProduct(executor SQLExecutor, productID int64) error {
	result, err := executor.Exec(`DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("%w: deleting product ID %d: %v", ErrDatabaseError, productID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for product delete ID %d: %v", ErrDatabaseError, productID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) CreateProductSize(executor SQLExecutor, size *models.ProductSize) (int64, error) {
	query := `INSERT INTO product_sizes (product_id, name, price_modifier)
	          VALUES ($1, $2, $3)
	          RETURNING id`
	err := executor.QueryRow(query, size.ProductID, size.Name, size.PriceModifier).Scan(&size.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating product size: %v", ErrDatabaseError, err)
	}
	return size.ID, nil
}

func (r *catalogRepository) GetSizesByProductID(productID int64) ([]models.ProductSize, error) {
	sizes := []models.ProductSize{}
	query := `SELECT id, product_id, name, price_modifier
	          FROM product_sizes WHERE product_id = $1 ORDER BY price_modifier`

	rows, err := r.db.Query(query, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sizes for product %d: %v", ErrDatabaseError, productID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProductSize
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Name, &s.PriceModifier); err != nil {
			return nil, fmt.Errorf("%w: scanning product size: %v", ErrDatabaseError, err)
		}
		sizes = append(sizes, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product size rows: %v", ErrDatabaseError, err)
	}
	return sizes, nil
}

func (r *catalogRepository) GetSizeByID(sizeID int64) (*models.ProductSize, error) {
	s := &models.ProductSize{}
	query := `SELECT id, product_id, name, price_modifier FROM product_sizes WHERE id = $1`
	err := r.db.QueryRow(query, sizeID).Scan(&s.ID, &s.ProductID, &s.Name, &s.PriceModifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product size %d: %v", ErrDatabaseError, sizeID, err)
	}
	return s, nil
}

func (r *catalogRepository) DeleteProductSize(executor SQLExecutor, sizeID int64) error {
	result, err := executor.Exec(`DELETE FROM product_sizes WHERE id = $1`, sizeID)
	if err != nil {
		return fmt.Errorf("%w: deleting product size ID %d: %v", ErrDatabaseError, sizeID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for size delete ID %d: %v", ErrDatabaseError, sizeID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
