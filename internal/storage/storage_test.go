package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campussync/complaint-management/internal"
	"github.com/campussync/complaint-management/internal/storage"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

var _ = Describe("Store", func() {
	var (
		dir   string
		store *storage.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "uploads-*")
		Expect(err).NotTo(HaveOccurred())

		backend, err := storage.NewLocalBackend(dir)
		Expect(err).NotTo(HaveOccurred())

		store = storage.NewStore(backend, 1024, []string{"png", "jpg", "jpeg"})
		ctx = context.Background()
		Expect(store.EnsureBucket(ctx)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	Describe("SaveUpload", func() {
		It("stores the file under a generated name keeping only the extension", func() {
			name, err := store.SaveUpload(ctx, "photo of pothole.PNG", strings.NewReader("fake-image"), 10)
			Expect(err).NotTo(HaveOccurred())

			Expect(name).To(HaveSuffix(".png"))
			Expect(name).NotTo(ContainSubstring("photo"))

			data, err := os.ReadFile(filepath.Join(dir, name))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("fake-image"))
		})

		It("generates a distinct name per upload", func() {
			a, err := store.SaveUpload(ctx, "a.png", strings.NewReader("a"), 1)
			Expect(err).NotTo(HaveOccurred())
			b, err := store.SaveUpload(ctx, "a.png", strings.NewReader("b"), 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(a).NotTo(Equal(b))
		})

		It("rejects files over the size cap", func() {
			_, err := store.SaveUpload(ctx, "big.png", strings.NewReader("x"), 2048)
			Expect(err).To(MatchError(internal.ErrUploadTooLarge))
		})

		It("rejects extensions outside the allow-list", func() {
			_, err := store.SaveUpload(ctx, "script.php", strings.NewReader("<?php"), 5)
			Expect(err).To(MatchError(internal.ErrUploadExtension))

			_, err = store.SaveUpload(ctx, "noextension", strings.NewReader("data"), 4)
			Expect(err).To(MatchError(internal.ErrUploadExtension))
		})
	})

	Describe("Open and Remove", func() {
		It("reads back and deletes a stored object", func() {
			name, err := store.SaveUpload(ctx, "a.jpg", strings.NewReader("payload"), 7)
			Expect(err).NotTo(HaveOccurred())

			rc, err := store.Open(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			data, err := io.ReadAll(rc)
			Expect(err).NotTo(HaveOccurred())
			Expect(rc.Close()).To(Succeed())
			Expect(string(data)).To(Equal("payload"))

			Expect(store.Remove(ctx, name)).To(Succeed())
			_, err = store.Open(ctx, name)
			Expect(err).To(HaveOccurred())
		})
	})
})
