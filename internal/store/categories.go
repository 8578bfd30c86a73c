package store

import (
	"context"

	"github.com/xelth-com/insalessync/internal/categories"
	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Categories lists the category mirror of a configuration
func (s *Store) Categories(ctx context.Context, configID uint) ([]models.InSalesCategory, error) {
	var cats []models.InSalesCategory
	err := s.db.WithContext(ctx).
		Where("config_id = ?", configID).
		Order("path_named").
		Find(&cats).Error
	return cats, err
}

// Refresh replaces the category mirror with the remote tree.
// Stale nodes are removed, sync flags of kept nodes survive and are pushed down to new children.
func (s *Store) Refresh(ctx context.Context, configID uint, remote []insales.Category) error {
	tree := categories.NewTree(remote)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("config_id = ?", configID)
		if ids := tree.IDs(); len(ids) > 0 {
			stale = stale.Where("remote_id NOT IN ?", ids)
		}
		if err := stale.Delete(&models.InSalesCategory{}).Error; err != nil {
			return err
		}

		nodes := tree.Nodes()
		if len(nodes) == 0 {
			return nil
		}

		rows := make([]models.InSalesCategory, len(nodes))
		for i, n := range nodes {
			rows[i] = models.InSalesCategory{
				ConfigID:   configID,
				RemoteID:   n.ID,
				Title:      n.Title,
				ParentPath: n.ParentPath,
				PathNamed:  n.PathNamed,
			}
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_id"}, {Name: "remote_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "parent_path", "path_named"}),
		}).CreateInBatches(rows, 500).Error
		if err != nil {
			return err
		}

		return propagateSync(tx, configID)
	})
}

// SetCategorySync changes the sync flag of one category and propagates it downwards
func (s *Store) SetCategorySync(ctx context.Context, id uint, sync bool) (*models.InSalesCategory, error) {
	var cat models.InSalesCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cat, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&cat).Update("sync", sync).Error; err != nil {
			return err
		}
		return propagateSync(tx, cat.ConfigID)
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// propagateSync sets sync on every descendant of a synced category
func propagateSync(tx *gorm.DB, configID uint) error {
	var cats []models.InSalesCategory
	err := tx.Select("id", "remote_id", "parent_path", "sync").
		Where("config_id = ?", configID).
		Find(&cats).Error
	if err != nil {
		return err
	}

	ids := pendingSync(cats)
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&models.InSalesCategory{}).
		Where("id IN ?", ids).
		Update("sync", true).Error
}

// pendingSync returns the unsynced categories lying below a synced one.
// Paths match on whole segments, "1/5" does not cover "1/51".
func pendingSync(cats []models.InSalesCategory) []uint {
	var roots []string
	for _, c := range cats {
		if c.Sync {
			roots = append(roots, c.SelfPath())
		}
	}

	var ids []uint
	for _, c := range cats {
		if c.Sync || c.ParentPath == "" {
			continue
		}
		for _, root := range roots {
			if categories.IsDescendantPath(c.ParentPath, root) {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return ids
}
