package db

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, config.FeatureFlagsConfig{}, nil)
	require.NoError(t, err)
	return client
}

// The schema has to migrate cleanly on sqlite; the dev and test paths depend
// on it, and IDs are assigned client-side so no database default is involved.
func TestAutoMigrateAllModelsOnSQLite(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.DB().AutoMigrate(models.All()...))

	user := &models.User{ID: uuid.New(), Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, client.DB().Create(user).Error)

	group := &models.Group{ID: uuid.New(), Slug: "iceland-2025", Name: "Iceland"}
	require.NoError(t, client.DB().Create(group).Error)

	var got models.Group
	require.NoError(t, client.DB().First(&got, "id = ?", group.ID).Error)
	assert.Equal(t, "iceland-2025", got.Slug)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.DB().AutoMigrate(models.All()...))

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Group{ID: uuid.New(), Slug: "doomed", Name: "Doomed"}).Error; err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.Group{}).Count(&count).Error)
	assert.Zero(t, count)
}
