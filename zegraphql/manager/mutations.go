package manager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/zekoder/zegraphql/types"
	"github.com/zekoder/zegraphql/zegraphql/query"
)

var statements = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Create inserts a record. When signal is set, PreCreate may add or override
// fields before the insert, and PostCreate receives the persisted record.
func (m *Manager) Create(ctx context.Context, data map[string]interface{}, signal *types.Signal) (record types.Record, err error) {
	defer m.track("create", time.Now(), &err)

	fields := copyMap(data)
	if signal != nil {
		extra, err := m.hooks.PreCreate(ctx, *signal)
		if err != nil {
			return nil, m.classify("pre_create", err)
		}
		for k, v := range extra {
			fields[k] = v
		}
	}

	actor := m.actor(ctx, signal)
	now := m.timeFunc().UTC()
	if id, ok := fields[types.FieldID].(string); !ok || id == "" {
		fields[types.FieldID] = m.idFunc()
	}
	setDefault(fields, types.FieldTenantID, actor.TenantID)
	setDefault(fields, types.FieldCreatedBy, actor.UserID)
	setDefault(fields, types.FieldUpdatedBy, actor.UserID)
	fields[types.FieldCreatedOn] = now
	fields[types.FieldUpdatedOn] = now

	columns, values, err := m.encode(fields)
	if err != nil {
		return nil, err
	}

	stmt, args, err := statements.Insert(m.entity.QualifiedTable()).Columns(columns...).Values(values...).ToSql()
	if err != nil {
		return nil, m.classify("create", err)
	}
	m.logger.Debug().Str("sql", stmt).Msg("insert")

	err = m.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt, args...)
		return err
	})
	if err != nil {
		return nil, m.classify("create", err)
	}

	id := fmt.Sprint(fields[types.FieldID])
	record, err = m.GetByID(ctx, id)
	if err != nil {
		return nil, m.classify("create", err)
	}
	m.logger.Info().Str("id", id).Msg("record created")

	if signal != nil {
		if err := m.hooks.PostCreate(ctx, signal.WithNewData(record.Map())); err != nil {
			m.logger.Warn().Err(err).Str("id", id).Msg("post_create hook failed")
		}
	}
	return record, nil
}

// Update writes data to the record with the given id and returns the
// refreshed record. Zero matched rows yields ErrNotFound.
func (m *Manager) Update(ctx context.Context, id string, data map[string]interface{}, signal *types.Signal) (record types.Record, err error) {
	defer m.track("update", time.Now(), &err)

	fields := copyMap(data)
	if signal != nil {
		extra, err := m.hooks.PreUpdate(ctx, *signal)
		if err != nil {
			return nil, m.classify("pre_update", err)
		}
		for k, v := range extra {
			fields[k] = v
		}
	}

	// Identity and creation stamps are fixed once a record exists
	delete(fields, types.FieldID)
	delete(fields, types.FieldCreatedOn)
	delete(fields, types.FieldCreatedBy)

	if actor := m.actor(ctx, signal); actor.UserID != "" {
		fields[types.FieldUpdatedBy] = actor.UserID
	}
	fields[types.FieldUpdatedOn] = m.timeFunc().UTC()

	columns, values, err := m.encode(fields)
	if err != nil {
		return nil, err
	}
	set := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		set[c] = values[i]
	}

	stmt, args, err := statements.Update(m.entity.QualifiedTable()).
		SetMap(set).
		Where(sq.Eq{types.FieldID: id}).
		ToSql()
	if err != nil {
		return nil, m.classify("update", err)
	}
	m.logger.Debug().Str("sql", stmt).Msg("update")

	err = m.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, m.classify("update", err)
	}

	record, err = m.GetByID(ctx, id)
	if err != nil {
		return nil, m.classify("update", err)
	}
	m.logger.Info().Str("id", id).Msg("record updated")

	if signal != nil {
		if err := m.hooks.PostUpdate(ctx, signal.WithNewData(record.Map())); err != nil {
			m.logger.Warn().Err(err).Str("id", id).Msg("post_update hook failed")
		}
	}
	return record, nil
}

// Delete removes the record with the given id. It returns false without
// error when PreDelete cancels the deletion.
func (m *Manager) Delete(ctx context.Context, id string, signal *types.Signal) (deleted bool, err error) {
	defer m.track("delete", time.Now(), &err)

	if signal != nil {
		ok, err := m.hooks.PreDelete(ctx, *signal)
		if err != nil {
			return false, m.classify("pre_delete", err)
		}
		if !ok {
			m.logger.Info().Str("id", id).Msg("delete cancelled by hook")
			return false, nil
		}
	}

	stmt, args, err := statements.Delete(m.entity.QualifiedTable()).Where(sq.Eq{types.FieldID: id}).ToSql()
	if err != nil {
		return false, m.classify("delete", err)
	}

	err = m.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return false, m.classify("delete", err)
	}
	m.logger.Info().Str("id", id).Msg("record deleted")

	if signal != nil {
		if err := m.hooks.PostDelete(ctx, *signal); err != nil {
			m.logger.Warn().Err(err).Str("id", id).Msg("post_delete hook failed")
		}
	}
	return true, nil
}

// DeleteMultiple removes every listed id in one statement and returns the
// number of rows removed. PreDelete runs once per old record; any veto
// cancels the whole batch. When a signal is given without old records, the
// old records are read first.
func (m *Manager) DeleteMultiple(ctx context.Context, ids []string, old []types.Record, signal *types.Signal) (count int64, err error) {
	defer m.track("delete_multiple", time.Now(), &err)

	if len(ids) == 0 {
		return 0, nil
	}

	if signal != nil && old == nil {
		old, err = m.List(ctx, ListOptions{
			Update: query.Update{Filters: []types.FilterPredicate{{
				FieldPath: types.FieldID,
				Operator:  types.Operator{In: ids},
			}}},
			Unpaginated: true,
		})
		if err != nil {
			return 0, err
		}
	}

	if signal != nil {
		for _, rec := range old {
			ok, err := m.hooks.PreDelete(ctx, signal.WithOldData(rec.Map()))
			if err != nil {
				return 0, m.classify("pre_delete", err)
			}
			if !ok {
				m.logger.Info().Str("id", rec.ID()).Int("batch", len(ids)).Msg("batch delete cancelled by hook")
				return 0, nil
			}
		}
	}

	stmt, args, err := statements.Delete(m.entity.QualifiedTable()).Where(sq.Eq{types.FieldID: ids}).ToSql()
	if err != nil {
		return 0, m.classify("delete_multiple", err)
	}

	err = m.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		count, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, m.classify("delete_multiple", err)
	}
	m.logger.Info().Int64("count", count).Msg("records deleted")

	if signal != nil {
		for _, rec := range old {
			if err := m.hooks.PostDelete(ctx, signal.WithOldData(rec.Map())); err != nil {
				m.logger.Warn().Err(err).Str("id", rec.ID()).Msg("post_delete hook failed")
			}
		}
	}
	return count, nil
}

// encode validates field names against the entity's stored columns and
// converts values for the driver. Columns come back in declaration order.
func (m *Manager) encode(fields map[string]interface{}) ([]string, []interface{}, error) {
	for name := range fields {
		if _, ok := m.entity.Column(name); !ok {
			return nil, nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidQuery, m.entity.Name, name)
		}
	}

	var columns []string
	var values []interface{}
	for _, f := range m.entity.Columns() {
		v, ok := fields[f.Name]
		if !ok {
			continue
		}
		encoded, err := f.Type.Encode(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, f.Name, err)
		}
		columns = append(columns, f.ColumnName())
		values = append(values, encoded)
	}
	return columns, values, nil
}

func (m *Manager) actor(ctx context.Context, signal *types.Signal) types.Actor {
	if signal != nil && !signal.Actor.IsZero() {
		return signal.Actor
	}
	return types.ActorFrom(ctx)
}

// setDefault fills key with value when the caller left it unset and value is known
func setDefault(fields map[string]interface{}, key, value string) {
	if value == "" {
		return
	}
	if v, ok := fields[key]; ok && v != nil {
		return
	}
	fields[key] = value
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
