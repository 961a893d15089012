package builder

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

// RowStore is the raw CRUD primitive under the mutation interceptor: map-based
// row access against registry-validated tables. It knows nothing about
// checkpoints or column semantics.
type RowStore interface {
	Get(dbc dbctx.Context, table, pkColumn, pk string) (map[string]interface{}, error)
	Insert(dbc dbctx.Context, table string, row map[string]interface{}) error
	Update(dbc dbctx.Context, table, pkColumn, pk string, changes map[string]interface{}) (int64, error)
	Delete(dbc dbctx.Context, table, pkColumn, pk string) (int64, error)
	ListByApp(dbc dbctx.Context, table string, appID uuid.UUID) ([]map[string]interface{}, error)
	DeleteByApp(dbc dbctx.Context, table string, appID uuid.UUID) (int64, error)
}

type rowStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRowStore(db *gorm.DB, baseLog *logger.Logger) RowStore {
	return &rowStore{db: db, log: baseLog.With("repo", "RowStore")}
}

func (r *rowStore) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

// checkIdent guards dynamic identifiers. Table and column names only ever
// come from the schema registry, this is the backstop.
func checkIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier: %w", pkgerr.ErrInvalidArgument)
	}
	for _, c := range name {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		return fmt.Errorf("bad identifier %q: %w", name, pkgerr.ErrInvalidArgument)
	}
	return nil
}

func (r *rowStore) Get(dbc dbctx.Context, table, pkColumn, pk string) (map[string]interface{}, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if err := checkIdent(pkColumn); err != nil {
		return nil, err
	}
	row := map[string]interface{}{}
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Table(table).
		Where(fmt.Sprintf("%s = ?", pkColumn), pk).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return normalizeRow(row), nil
}

func (r *rowStore) Insert(dbc dbctx.Context, table string, row map[string]interface{}) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	if len(row) == 0 {
		return fmt.Errorf("empty row for %s: %w", table, pkgerr.ErrInvalidArgument)
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Table(table).
		Create(row).Error
}

func (r *rowStore) Update(dbc dbctx.Context, table, pkColumn, pk string, changes map[string]interface{}) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := checkIdent(pkColumn); err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, fmt.Errorf("empty update for %s: %w", table, pkgerr.ErrInvalidArgument)
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Table(table).
		Where(fmt.Sprintf("%s = ?", pkColumn), pk).
		Updates(changes)
	return res.RowsAffected, res.Error
}

func (r *rowStore) Delete(dbc dbctx.Context, table, pkColumn, pk string) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := checkIdent(pkColumn); err != nil {
		return 0, err
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, pkColumn), pk)
	return res.RowsAffected, res.Error
}

func (r *rowStore) ListByApp(dbc dbctx.Context, table string, appID uuid.UUID) ([]map[string]interface{}, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Table(table).
		Where("app_id = ?", appID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = normalizeRow(rows[i])
	}
	return rows, nil
}

func (r *rowStore) DeleteByApp(dbc dbctx.Context, table string, appID uuid.UUID) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE app_id = ?", table), appID)
	return res.RowsAffected, res.Error
}

// normalizeRow makes scanned rows stable across drivers so undo-log
// snapshots round-trip: []byte column values become strings.
func normalizeRow(row map[string]interface{}) map[string]interface{} {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}
