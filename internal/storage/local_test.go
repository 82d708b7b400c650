package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/unalkalkan/SceneForge/pkg/types"
)

func TestLocalAdapter(t *testing.T) {
	tmpDir := t.TempDir()
	adapter, err := NewLocalAdapter(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create local adapter: %v", err)
	}
	defer adapter.Close()

	ctx := context.Background()
	testPath := "plans/p1/plan.json"
	testData := []byte(`{"project":{"id":"p1"}}`)

	t.Run("Put", func(t *testing.T) {
		err := adapter.Put(ctx, testPath, bytes.NewReader(testData))
		if err != nil {
			t.Fatalf("Failed to put data: %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := adapter.Exists(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to check existence: %v", err)
		}
		if !exists {
			t.Error("File should exist after Put")
		}
	})

	t.Run("Get", func(t *testing.T) {
		reader, err := adapter.Get(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to get data: %v", err)
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("Failed to read data: %v", err)
		}

		if !bytes.Equal(data, testData) {
			t.Errorf("Expected %s, got %s", testData, data)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := adapter.Put(ctx, testPath, bytes.NewReader([]byte("v2"))); err != nil {
			t.Fatalf("Failed to overwrite: %v", err)
		}
		reader, err := adapter.Get(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to get data: %v", err)
		}
		defer reader.Close()
		data, _ := io.ReadAll(reader)
		if string(data) != "v2" {
			t.Errorf("Expected v2, got %s", data)
		}
	})

	t.Run("List", func(t *testing.T) {
		adapter.Put(ctx, "plans/p2/plan.json", bytes.NewReader([]byte("{}")))
		adapter.Put(ctx, "assets/a.png", bytes.NewReader([]byte("png")))

		paths, err := adapter.List(ctx, "plans/")
		if err != nil {
			t.Fatalf("Failed to list files: %v", err)
		}

		want := []string{"plans/p1/plan.json", "plans/p2/plan.json"}
		if fmt.Sprint(paths) != fmt.Sprint(want) {
			t.Errorf("Expected %v, got %v", want, paths)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		err := adapter.Delete(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to delete data: %v", err)
		}

		exists, err := adapter.Exists(ctx, testPath)
		if err != nil {
			t.Fatalf("Failed to check existence: %v", err)
		}
		if exists {
			t.Error("File should not exist after Delete")
		}

		if err := adapter.Delete(ctx, testPath); err != nil {
			t.Errorf("Deleting twice should succeed, got %v", err)
		}
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		_, err := adapter.Get(ctx, "non-existent.txt")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RejectsEscape", func(t *testing.T) {
		err := adapter.Put(ctx, "../outside.txt", bytes.NewReader([]byte("x")))
		if err == nil {
			t.Error("Expected error for path outside base directory")
		}
	})
}

func TestLocalAdapterConcurrency(t *testing.T) {
	tmpDir := t.TempDir()
	adapter, err := NewLocalAdapter(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create local adapter: %v", err)
	}
	defer adapter.Close()

	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(idx int) {
			path := fmt.Sprintf("assets/file%d.mp3", idx)
			err := adapter.Put(ctx, path, bytes.NewReader([]byte("audio")))
			if err != nil {
				t.Errorf("Failed to put data: %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	paths, err := adapter.List(ctx, "assets/")
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(paths) != 10 {
		t.Errorf("Expected 10 files, got %d", len(paths))
	}
}

func TestNewAdapter_Unknown(t *testing.T) {
	_, err := NewAdapter(types.StorageConfig{Adapter: "ftp"})
	if err == nil {
		t.Error("Expected error for unknown adapter")
	}
}
