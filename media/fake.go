package media

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// FakeStore records uploads and deletes for tests. UploadErr and DeleteErr
// force the corresponding call to fail.
type FakeStore struct {
	mu        sync.Mutex
	UploadErr error
	DeleteErr error
	Uploads   []string // folders, in call order
	Deletes   []string // ids, in call order
	next      int
}

func (f *FakeStore) Upload(_ context.Context, _ io.Reader, folder string) (*Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	f.next++
	f.Uploads = append(f.Uploads, folder)
	id := fmt.Sprintf("fake-media-%d", f.next)
	return &Upload{URL: "https://cdn.example.com/" + id + ".jpg", ID: id}, nil
}

func (f *FakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deletes = append(f.Deletes, id)
	return nil
}
