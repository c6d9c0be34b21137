package storage

import (
	"context"
	"fmt"
	"os"
)

// UploadFile copies the file at path to key.
func UploadFile(ctx context.Context, st Storage, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for upload: %w", path, err)
	}
	defer f.Close()

	return st.Put(ctx, key, f, PutOptions{ContentType: ContentTypeFor(key)})
}
