package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
)

// Config for the Tandoor client.
type Config struct {
	BaseURL string        // e.g. http://localhost:8090 or the reverse-proxy origin
	Token   string        // API bearer token
	Timeout time.Duration // 0 means no timeout
}

// Client uploads mapped recipes to a Tandoor instance.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8090"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Upload issues one authenticated POST to the recipe import endpoint.
// Failures carry the raw status code and response body uninterpreted;
// the caller surfaces them verbatim and no queue state changes.
func (c *Client) Upload(ctx context.Context, payload TandoorRecipe) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/recipe/"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.Token}

	raw, status, err := common.SendJSON(ctx, c.httpClient, endpoint, payload, headers, c.log)
	if err != nil {
		if status != 0 {
			msg := fmt.Sprintf("tandoor returned status %d: %s", status, strings.TrimSpace(string(raw)))
			return common.NewExportFailure(msg, err)
		}
		return common.NewExportFailure("tandoor request failed", err)
	}

	c.log.Info("export.tandoor.ok", "recipe", payload.Name, "status", status)
	return nil
}
