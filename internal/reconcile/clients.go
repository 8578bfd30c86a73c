package reconcile

import (
	"fmt"

	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/utils"
)

// NewClientFactory builds InSales clients, opening the sealed API password with encKey
func NewClientFactory(encKey string, opts insales.Options) ClientFactory {
	return func(cfg *models.InSalesConfig) (RemoteAPI, error) {
		password, err := utils.OpenSecret(cfg.APIPassword, encKey)
		if err != nil {
			return nil, fmt.Errorf("config %d: api password: %w", cfg.ID, err)
		}
		return insales.NewClient(cfg.Host, cfg.APIKey, password, opts), nil
	}
}
