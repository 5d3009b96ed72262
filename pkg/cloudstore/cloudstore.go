// Package cloudstore is the Firestore backend for the dictionary, the
// translation cache and restaurant menus.
package cloudstore

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

// Collection names.
const (
	DictionaryCollection  = "dictionary"
	CacheCollection       = "translation_cache"
	RestaurantsCollection = "restaurants"
	MenuItemsCollection   = "menu_items"
)

// ErrNoCredentials is returned when neither credentials nor an emulator are
// configured.
var ErrNoCredentials = errors.New("firebase credentials are not set")

// DecodeCredentials decodes base64-encoded service account JSON.
func DecodeCredentials(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrNoCredentials
	}
	creds, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode firebase credentials: %w", err)
	}
	return creds, nil
}

// NewClient returns a Firestore client for projectID. encodedCreds holds
// base64 service account JSON; when empty, application default credentials
// (or FIRESTORE_EMULATOR_HOST) are used.
func NewClient(ctx context.Context, projectID, encodedCreds string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if encodedCreds != "" {
		creds, err := DecodeCredentials(encodedCreds)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

// docID derives a stable document id from a natural key.
func docID(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
