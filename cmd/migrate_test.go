package cmd

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pressly/goose/v3"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

var _ = Describe("Schema migrations", func() {
	dir := filepath.Join("..", defaultMigrationsDir)

	It("collects the migration set applied on server start", func() {
		migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(migrations)).To(BeNumerically(">=", 3))

		seen := map[int64]bool{}
		for _, m := range migrations {
			Expect(seen[m.Version]).To(BeFalse(), "duplicate migration version %d", m.Version)
			seen[m.Version] = true
		}
	})

	It("pairs every up migration with a rollback", func() {
		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).NotTo(BeEmpty())

		for _, entry := range entries {
			content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("-- +goose Up"), entry.Name())
			Expect(string(content)).To(ContainSubstring("-- +goose Down"), entry.Name())
		}
	})
})
