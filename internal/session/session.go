// Package session remembers who is using wt between invocations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elevatic20/worktime-app/internal/storage"
)

// Key is the storage key of the session state.
const Key = "state.json"

// State is the persisted session state.
type State struct {
	User string `json:"user"`
}

// Load returns the saved state. A missing state is not an error.
func Load(ctx context.Context, b storage.Blobs) (State, error) {
	data, err := b.Read(ctx, Key)
	if errors.Is(err, storage.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("corrupt session state %s: %w", Key, err)
	}
	return st, nil
}

// Save validates and persists st.
func Save(ctx context.Context, b storage.Blobs, st State) error {
	if err := storage.ValidateUser(st.User); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return b.Write(ctx, Key, data)
}
