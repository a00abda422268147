package module_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/module"
)

type fakeModule struct {
	name  string
	ticks int
	order *[]string
}

func (f *fakeModule) Name() string { return f.name }
func (f *fakeModule) OnTick(module.Context) {
	f.ticks++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
}
func (f *fakeModule) SerializeState() ([]byte, error) { return []byte(f.name), nil }
func (f *fakeModule) LoadState(b []byte) error        { f.name = string(b); return nil }

type otherModule struct{ fakeModule }

var _ = Describe("Registry", func() {
	It("runs modules OnTick in registration order", func() {
		r := module.NewRegistry()
		var order []string
		a := &fakeModule{name: "power", order: &order}
		b := &fakeModule{name: "fluid", order: &order}
		r.Register(a)
		r.Register(b)
		r.OnTick(module.Context{})
		Expect(a.ticks).To(Equal(1))
		Expect(b.ticks).To(Equal(1))
		Expect(order).To(Equal([]string{"power", "fluid"}))
	})

	It("finds a module by concrete type", func() {
		r := module.NewRegistry()
		r.Register(&fakeModule{name: "power"})
		r.Register(&otherModule{fakeModule{name: "fluid"}})

		found, ok := module.ModuleByType[*otherModule](r)
		Expect(ok).To(BeTrue())
		Expect(found.name).To(Equal("fluid"))
	})

	It("reports not found for an unregistered type", func() {
		r := module.NewRegistry()
		r.Register(&fakeModule{name: "power"})
		_, ok := module.ModuleByType[*otherModule](r)
		Expect(ok).To(BeFalse())
	})
})
