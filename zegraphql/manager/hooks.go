package manager

import (
	"context"

	"github.com/zekoder/zegraphql/types"
)

// Hooks are the extension points around every mutation.
// Pre hooks run before the write and outside its transaction; what they
// return is merged into the persisted fields, winning on key collision.
// Post hooks run after commit and cannot undo the write.
type Hooks interface {
	PreCreate(ctx context.Context, signal types.Signal) (map[string]interface{}, error)
	PostCreate(ctx context.Context, signal types.Signal) error

	PreUpdate(ctx context.Context, signal types.Signal) (map[string]interface{}, error)
	PostUpdate(ctx context.Context, signal types.Signal) error

	// PreDelete returns false to cancel the deletion
	PreDelete(ctx context.Context, signal types.Signal) (bool, error)
	PostDelete(ctx context.Context, signal types.Signal) error
}

// NopHooks passes NewData through and allows every deletion.
// Entity hooks embed it and override what they need.
type NopHooks struct{}

var _ Hooks = NopHooks{}

func (NopHooks) PreCreate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	return signal.NewData, nil
}

func (NopHooks) PostCreate(context.Context, types.Signal) error { return nil }

func (NopHooks) PreUpdate(_ context.Context, signal types.Signal) (map[string]interface{}, error) {
	return signal.NewData, nil
}

func (NopHooks) PostUpdate(context.Context, types.Signal) error { return nil }

func (NopHooks) PreDelete(context.Context, types.Signal) (bool, error) { return true, nil }

func (NopHooks) PostDelete(context.Context, types.Signal) error { return nil }
