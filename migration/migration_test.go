package migration_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/migration"
	"github.com/nova-forge/factorial-sim/serialize"
)

var _ = Describe("Registry", func() {
	It("reports no path when nothing is registered", func() {
		r := migration.NewRegistry()
		Expect(r.CanMigrate(0, 1)).To(BeFalse())
		Expect(r.CanMigrate(5, 5)).To(BeTrue())
	})

	It("chains multiple registered steps", func() {
		r := migration.NewRegistry()
		r.Register(0, func(data []byte) ([]byte, error) { return append(data, 'a'), nil })
		r.Register(1, func(data []byte) ([]byte, error) { return append(data, 'b'), nil })

		Expect(r.CanMigrate(0, 2)).To(BeTrue())
		Expect(r.CanMigrate(0, 3)).To(BeFalse())

		out, err := r.Migrate([]byte("x"), 0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("xab"))
	})

	It("returns data unchanged when from == to", func() {
		r := migration.NewRegistry()
		out, err := r.Migrate([]byte("same"), 4, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("same"))
	})

	It("errors NoMigrationPath when a step is missing from the chain", func() {
		r := migration.NewRegistry()
		r.Register(0, func(data []byte) ([]byte, error) { return data, nil })
		// no step registered for version 1

		_, err := r.Migrate([]byte("x"), 0, 2)
		Expect(err).To(HaveOccurred())
		var serr *serialize.Error
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Kind).To(Equal(serialize.NoMigrationPath))
	})

	It("errors NoMigrationPath when from > to", func() {
		r := migration.NewRegistry()
		_, err := r.Migrate([]byte("x"), 5, 1)
		var serr *serialize.Error
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Kind).To(Equal(serialize.NoMigrationPath))
	})

	It("propagates a step's own failure wrapped with version context", func() {
		r := migration.NewRegistry()
		r.Register(0, func(data []byte) ([]byte, error) { return nil, errors.New("corrupt") })

		_, err := r.Migrate([]byte("x"), 0, 1)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("corrupt"))
	})
})

var _ = Describe("MigrateFrame", func() {
	It("parses a frame already at CurrentVersion with no registered steps", func() {
		r := migration.NewRegistry()
		enc := serialize.NewEncoder()
		data := enc.Finish(0)

		frame, err := r.MigrateFrame(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Header.Version).To(Equal(serialize.CurrentVersion))
	})
})
