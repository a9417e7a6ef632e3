package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

func TestContentBucketEmulatorLifecycle(t *testing.T) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("TB_RUN_GCS_EMULATOR_INTEGRATION")), "true") {
		t.Skip("set TB_RUN_GCS_EMULATOR_INTEGRATION=true to run emulator integration tests")
	}

	emulatorHost := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))
	if emulatorHost == "" {
		emulatorHost = "http://127.0.0.1:4443"
	}
	emulatorHost = strings.TrimRight(emulatorHost, "/")

	if !isEmulatorReachable(t, emulatorHost) {
		t.Skipf("storage emulator not reachable at %s", emulatorHost)
	}

	bucketName := fmt.Sprintf("tb-it-content-%d", time.Now().UnixNano())
	createBucketIfMissing(t, emulatorHost, bucketName)
	t.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)

	bucket, err := NewContentBucket(logger.NewNop(), BucketConfig{
		Name:    bucketName,
		Storage: ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: emulatorHost},
	})
	if err != nil {
		t.Fatalf("NewContentBucket: %v", err)
	}

	ctx := context.Background()
	keyA := ObjectPath("tutorial", "Paso1_Subpaso1.txt")
	keyB := ObjectPath("tutorial", "Paso1_Subpaso2.txt")
	if err := bucket.Upload(ctx, keyA, strings.NewReader("alpha")); err != nil {
		t.Fatalf("Upload(%s): %v", keyA, err)
	}
	if err := bucket.Upload(ctx, keyB, strings.NewReader("beta")); err != nil {
		t.Fatalf("Upload(%s): %v", keyB, err)
	}

	waitForKeys(t, bucket, ctx, "tutorial/", keyA, keyB)

	text, err := readWithRetry(ctx, bucket, keyA, 5*time.Second)
	if err != nil {
		t.Fatalf("ReadText(%s): %v", keyA, err)
	}
	if text != "alpha" {
		t.Fatalf("ReadText: want=%q got=%q", "alpha", text)
	}

	if _, err := bucket.ReadText(ctx, "tutorial/missing.txt"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("ReadText(missing): want ErrObjectNotFound got=%v", err)
	}

	if err := bucket.Delete(ctx, keyA); err != nil {
		t.Fatalf("Delete(%s): %v", keyA, err)
	}
	keys, err := bucket.ListKeys(ctx, "tutorial/")
	if err != nil {
		t.Fatalf("ListKeys after delete: %v", err)
	}
	if slices.Contains(keys, keyA) || !slices.Contains(keys, keyB) {
		t.Fatalf("ListKeys after delete: got=%v", keys)
	}
}

func isEmulatorReachable(t *testing.T, emulatorHost string) bool {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(emulatorHost + "/storage/v1/b?project=local-dev")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500
}

func createBucketIfMissing(t *testing.T, emulatorHost string, bucket string) {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"name": bucket})
	if err != nil {
		t.Fatalf("json.Marshal(bucket): %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(
		http.MethodPost,
		emulatorHost+"/storage/v1/b?project=local-dev",
		bytes.NewReader(payload),
	)
	if err != nil {
		t.Fatalf("http.NewRequest(create bucket): %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("create bucket %q: %v", bucket, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusConflict {
		return
	}
	b, _ := io.ReadAll(resp.Body)
	t.Fatalf("create bucket %q failed: status=%d body=%s", bucket, resp.StatusCode, strings.TrimSpace(string(b)))
}

func waitForKeys(t *testing.T, bucket ContentBucket, ctx context.Context, prefix string, keys ...string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var last []string
	for {
		got, err := bucket.ListKeys(ctx, prefix)
		if err == nil {
			last = got
			ok := true
			for _, k := range keys {
				if !slices.Contains(got, k) {
					ok = false
					break
				}
			}
			if ok {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for keys %v under prefix %q; last=%v", keys, prefix, last)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func readWithRetry(ctx context.Context, bucket ContentBucket, key string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		text, err := bucket.ReadText(ctx, key)
		if err == nil {
			return text, nil
		}
		if time.Now().After(deadline) {
			return "", err
		}
		time.Sleep(100 * time.Millisecond)
	}
}
