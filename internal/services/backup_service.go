package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrBackupNotConfigured = errors.New("backup storage is not configured")

// backupTables is the fixed list of business tables included in a dump.
var backupTables = []string{
	"employees",
	"role_permissions",
	"products",
	"product_sizes",
	"restaurant_tables",
	"orders",
	"order_items",
	"deleted_orders",
	"cash_register_sessions",
	"cash_withdrawals",
	"company_settings",
}

// BackupConfig points at the object store. The store expects the legacy
// `AWS <key>:<signature>` authorization header rather than SigV4.
type BackupConfig struct {
	Endpoint  string // e.g. https://storage.example.com
	Bucket    string
	AccessKey string
	SecretKey string
}

// Configured reports whether all connection details are present.
func (c BackupConfig) Configured() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// BackupResult mirrors the response body of the backup endpoint.
type BackupResult struct {
	Success    bool   `json:"success"`
	URL        string `json:"url,omitempty"`
	StatusCode int    `json:"statusCode"`
	FileName   string `json:"fileName"`
	SizeBytes  int    `json:"sizeBytes"`
}

// --- BackupService Interface ---

// BackupService dumps the business tables to one JSON document and uploads
// it to the configured object store.
type BackupService interface {
	Run(ctx context.Context, fileName string) (*BackupResult, error)
}

type backupService struct {
	db         *sql.DB
	cfg        BackupConfig
	httpClient *http.Client
}

// NewBackupService creates a new instance of BackupService.
func NewBackupService(db *sql.DB, cfg BackupConfig) BackupService {
	return &backupService{
		db:         db,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Run dumps every table concurrently, assembles one document and uploads it.
func (s *backupService) Run(ctx context.Context, fileName string) (*BackupResult, error) {
	if !s.cfg.Configured() {
		return nil, ErrBackupNotConfigured
	}
	if fileName == "" {
		fileName = fmt.Sprintf("backup-%s.json", time.Now().Format("20060102-150405"))
	}

	dump := make(map[string]json.RawMessage, len(backupTables))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, table := range backupTables {
		g.Go(func() error {
			rows, err := s.dumpTable(gctx, table)
			if err != nil {
				return err
			}
			mu.Lock()
			dump[table] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dumping tables: %w", err)
	}

	document, err := json.Marshal(map[string]interface{}{
		"created_at": time.Now().UTC(),
		"tables":     dump,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling backup document: %w", err)
	}

	return s.upload(ctx, fileName, document)
}

// dumpTable serializes one table as a JSON array. Table names come from the
// fixed backupTables list, never from input.
func (s *backupService) dumpTable(ctx context.Context, table string) (json.RawMessage, error) {
	var payload []byte
	query := fmt.Sprintf(`SELECT COALESCE(json_agg(t), '[]'::json) FROM %s t`, table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&payload); err != nil {
		return nil, fmt.Errorf("dumping table %s: %w", table, err)
	}
	return json.RawMessage(payload), nil
}

func (s *backupService) upload(ctx context.Context, fileName string, body []byte) (*BackupResult, error) {
	resource := fmt.Sprintf("/%s/%s", s.cfg.Bucket, fileName)
	url := strings.TrimSuffix(s.cfg.Endpoint, "/") + resource

	const contentType = "application/json"
	date := time.Now().UTC().Format(http.TimeFormat)
	stringToSign := strings.Join([]string{"PUT", "", contentType, date, resource}, "\n")
	signature := legacySignature(s.cfg.SecretKey, stringToSign)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Date", date)
	req.Header.Set("Authorization", fmt.Sprintf("AWS %s:%s", s.cfg.AccessKey, signature))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading backup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &BackupResult{Success: false, StatusCode: resp.StatusCode, FileName: fileName},
			fmt.Errorf("backup upload rejected with status %d: %s", resp.StatusCode, string(detail))
	}

	return &BackupResult{
		Success:    true,
		URL:        url,
		StatusCode: resp.StatusCode,
		FileName:   fileName,
		SizeBytes:  len(body),
	}, nil
}

// legacySignature is the pre-SigV4 AWS request signature: base64 of an
// HMAC-SHA1 over the canonical string.
func legacySignature(secret, stringToSign string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
