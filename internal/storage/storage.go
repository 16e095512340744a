// Package storage persists opaque JSON documents under fixed keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Fixed document keys.
const (
	KeyProfile        = "eration_user"
	KeyRationCards    = "eration_ration_card"
	KeyNotifications  = "eration_notifications"
	KeyApplications   = "eration_applications"
	KeyInternetAccess = "internet_access_status"
)

// AllKeys lists every document written on behalf of a device.
var AllKeys = []string{KeyProfile, KeyRationCards, KeyNotifications, KeyApplications, KeyInternetAccess}

// ErrPersistence wraps load and save failures, including malformed documents.
// Callers treat it as "no data" and log it.
var ErrPersistence = errors.New("persistence failure")

// Adapter is a key-value store for JSON documents.
type Adapter interface {
	// Save serialises value under key, replacing any previous document.
	Save(ctx context.Context, key string, value any) error
	// Load decodes the document under key into dst. It reports false with a
	// nil error when the key is missing.
	Load(ctx context.Context, key string, dst any) (bool, error)
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// blobStore is the raw byte layer shared by the concrete adapters.
type blobStore interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, data []byte) error
	del(ctx context.Context, key string) error
}

// jsonAdapter turns a blobStore into an Adapter.
type jsonAdapter struct {
	blobs blobStore
}

func (a jsonAdapter) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistence, key, err)
	}
	if err := a.blobs.put(ctx, key, data); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrPersistence, key, err)
	}
	return nil
}

func (a jsonAdapter) Load(ctx context.Context, key string, dst any) (bool, error) {
	data, ok, err := a.blobs.get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: load %s: %v", ErrPersistence, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrPersistence, key, err)
	}
	return true, nil
}

func (a jsonAdapter) Remove(ctx context.Context, key string) error {
	if err := a.blobs.del(ctx, key); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrPersistence, key, err)
	}
	return nil
}

// Scoped prefixes every key with a device namespace so one backing store can
// hold the documents of many devices.
func Scoped(a Adapter, deviceID string) Adapter {
	return scoped{inner: a, prefix: "device:" + deviceID + ":"}
}

type scoped struct {
	inner  Adapter
	prefix string
}

func (s scoped) Save(ctx context.Context, key string, value any) error {
	return s.inner.Save(ctx, s.prefix+key, value)
}

func (s scoped) Load(ctx context.Context, key string, dst any) (bool, error) {
	return s.inner.Load(ctx, s.prefix+key, dst)
}

func (s scoped) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

// Clear removes every fixed document from a.
func Clear(ctx context.Context, a Adapter) error {
	var errs []error
	for _, key := range AllKeys {
		if err := a.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
