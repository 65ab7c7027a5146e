package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zekoder/zegraphql/types"
	"github.com/zekoder/zegraphql/zegraphql/manager"
)

// DocumentHooks validates enums, defaults the status and normalises tags
type DocumentHooks struct {
	manager.NopHooks
}

func (DocumentHooks) PreCreate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	data := copyData(signal.NewData)
	if data["status"] == nil {
		data["status"] = DefaultStatus
	}
	if err := normaliseDocument(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (DocumentHooks) PreUpdate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	data := copyData(signal.NewData)
	if err := normaliseDocument(data); err != nil {
		return nil, err
	}
	return data, nil
}

func normaliseDocument(data map[string]interface{}) error {
	if err := checkEnum(data, "category", DocumentCategories); err != nil {
		return err
	}
	if err := checkEnum(data, "status", DocumentStatuses); err != nil {
		return err
	}
	if tags, ok := data["tags"].(string); ok {
		parts := strings.Split(tags, ",")
		for i, p := range parts {
			parts[i] = strings.ToLower(strings.TrimSpace(p))
		}
		data["tags"] = strings.Join(parts, ",")
	}
	return nil
}

// IndustryHooks trims names and refuses to delete industries still in use
type IndustryHooks struct {
	manager.NopHooks

	// Documents returns a manager over documents, used to look for references
	Documents func() *manager.Manager
}

func (IndustryHooks) PreCreate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	return trimName(signal.NewData), nil
}

func (IndustryHooks) PreUpdate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	return trimName(signal.NewData), nil
}

func (h IndustryHooks) PreDelete(ctx context.Context, signal types.Signal) (bool, error) {
	if h.Documents == nil || signal.OldData == nil {
		return true, nil
	}
	id, _ := signal.OldData[types.FieldID].(string)
	if id == "" {
		return true, nil
	}

	_, err := h.Documents().Get(ctx, map[string]interface{}{"industry_document": id})
	switch {
	case errors.Is(err, manager.ErrNotFound):
		return true, nil
	case err != nil:
		return false, err
	default:
		return false, nil
	}
}

func trimName(in map[string]interface{}) map[string]interface{} {
	data := copyData(in)
	if name, ok := data["industry_name"].(string); ok {
		data["industry_name"] = strings.TrimSpace(name)
	}
	return data
}

// SummaryTaskHooks validates and defaults the status
type SummaryTaskHooks struct {
	manager.NopHooks
}

func (SummaryTaskHooks) PreCreate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	data := copyData(signal.NewData)
	if data["status"] == nil {
		data["status"] = DefaultStatus
	}
	if err := checkEnum(data, "status", SummaryTaskStatuses); err != nil {
		return nil, err
	}
	return data, nil
}

func (SummaryTaskHooks) PreUpdate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	data := copyData(signal.NewData)
	if err := checkEnum(data, "status", SummaryTaskStatuses); err != nil {
		return nil, err
	}
	return data, nil
}

func checkEnum(data map[string]interface{}, field string, allowed []string) error {
	v, ok := data[field]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &manager.ValidationError{Field: field, Message: fmt.Sprintf("expected a string, got %T", v)}
	}
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return &manager.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%q is not one of %s", s, strings.Join(allowed, ", ")),
	}
}

func copyData(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
