package services

import (
	"database/sql"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// SalesSummaryRow is one accounting day in the sales report.
type SalesSummaryRow struct {
	Day            string  `json:"day"`
	OrdersCount    int     `json:"orders_count"`
	Revenue        float64 `json:"revenue"`
	CashRevenue    float64 `json:"cash_revenue"`
	CardRevenue    float64 `json:"card_revenue"`
	DigitalRevenue float64 `json:"digital_revenue"`
	CancelledCount int     `json:"cancelled_count"`
}

// TopProductRow is one product in the best-sellers report.
type TopProductRow struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// --- ReportService Interface ---

// ReportService aggregates completed sales for the back office and builds
// the Excel export.
type ReportService interface {
	GetSalesSummary(from, to time.Time) ([]SalesSummaryRow, error)
	GetTopProducts(from, to time.Time, limit int) ([]TopProductRow, error)
	BuildSalesWorkbook(from, to time.Time) (*excelize.File, error)
}

type reportService struct {
	db *sql.DB
}

// NewReportService creates a new instance of ReportService.
func NewReportService(db *sql.DB) ReportService {
	return &reportService{db: db}
}

func (s *reportService) GetSalesSummary(from, to time.Time) ([]SalesSummaryRow, error) {
	rows := []SalesSummaryRow{}
	query := `
        SELECT
            to_char(created_at::date, 'YYYY-MM-DD') AS day,
            COUNT(*) FILTER (WHERE status = $3) AS orders_count,
            COALESCE(SUM(total) FILTER (WHERE status = $3), 0) AS revenue,
            COALESCE(SUM(total) FILTER (WHERE status = $3 AND payment_method = 'cash'), 0) AS cash_revenue,
            COALESCE(SUM(total) FILTER (WHERE status = $3 AND payment_method = 'card'), 0) AS card_revenue,
            COALESCE(SUM(total) FILTER (WHERE status = $3 AND payment_method = 'digital'), 0) AS digital_revenue,
            COUNT(*) FILTER (WHERE status = $4) AS cancelled_count
        FROM orders
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY created_at::date
        ORDER BY created_at::date`

	result, err := s.db.Query(query, from, to, models.OrderStatusCompleted, models.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("querying sales summary: %w", err)
	}
	defer result.Close()

	for result.Next() {
		var row SalesSummaryRow
		err := result.Scan(&row.Day, &row.OrdersCount, &row.Revenue, &row.CashRevenue,
			&row.CardRevenue, &row.DigitalRevenue, &row.CancelledCount)
		if err != nil {
			return nil, fmt.Errorf("scanning sales summary row: %w", err)
		}
		rows = append(rows, row)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales summary rows: %w", err)
	}
	return rows, nil
}

func (s *reportService) GetTopProducts(from, to time.Time, limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows := []TopProductRow{}
	query := `
        SELECT oi.product_name, SUM(oi.quantity) AS quantity, COALESCE(SUM(oi.subtotal), 0) AS revenue
        FROM order_items oi
        JOIN orders o ON oi.order_id = o.id
        WHERE o.status = $3 AND o.created_at >= $1 AND o.created_at < $2
        GROUP BY oi.product_name
        ORDER BY quantity DESC
        LIMIT $4`

	result, err := s.db.Query(query, from, to, models.OrderStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top products: %w", err)
	}
	defer result.Close()

	for result.Next() {
		var row TopProductRow
		if err := result.Scan(&row.ProductName, &row.Quantity, &row.Revenue); err != nil {
			return nil, fmt.Errorf("scanning top product row: %w", err)
		}
		rows = append(rows, row)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("iterating top product rows: %w", err)
	}
	return rows, nil
}

// BuildSalesWorkbook assembles the .xlsx the back office downloads: one
// sheet of daily sales, one of top products.
func (s *reportService) BuildSalesWorkbook(from, to time.Time) (*excelize.File, error) {
	summary, err := s.GetSalesSummary(from, to)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.GetTopProducts(from, to, 20)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	const salesSheet = "Sales"
	f.SetSheetName(f.GetSheetName(0), salesSheet)
	headers := []interface{}{"Day", "Orders", "Revenue", "Cash", "Card", "Digital", "Cancelled"}
	if err := f.SetSheetRow(salesSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("writing sales header: %w", err)
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{row.Day, row.OrdersCount, row.Revenue, row.CashRevenue, row.CardRevenue, row.DigitalRevenue, row.CancelledCount}
		if err := f.SetSheetRow(salesSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing sales row: %w", err)
		}
	}

	const productSheet = "Top products"
	if _, err := f.NewSheet(productSheet); err != nil {
		return nil, fmt.Errorf("creating product sheet: %w", err)
	}
	productHeaders := []interface{}{"Product", "Quantity", "Revenue"}
	if err := f.SetSheetRow(productSheet, "A1", &productHeaders); err != nil {
		return nil, fmt.Errorf("writing product header: %w", err)
	}
	for i, row := range topProducts {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{row.ProductName, row.Quantity, row.Revenue}
		if err := f.SetSheetRow(productSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing product row: %w", err)
		}
	}

	return f, nil
}
