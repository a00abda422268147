package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/engine"
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
)

var _ = Describe("Source initial properties", func() {
	It("stamps every produced item with the configured properties", func() {
		e := engine.New(newRegistry())
		pending := e.Graph().AddNode(0)
		result := e.Step()
		n := result.Mutations.Nodes[pending]

		quality := fixed.FromFloat32(0.8)
		e.Commands().Submit(command.Command{
			Kind: command.SetProcessor,
			Node: n,
			Payload: processor.Config{
				Variant:           processor.Source,
				OutputItem:        ore,
				BaseRate:          fixed.FromFloat64(2),
				Depletion:         processor.Depletion{Infinite: true},
				InitialProperties: map[id.PropertyId]fixed.Fixed32{0: quality},
			},
		})
		e.Step()

		Expect(e.ItemProperties().Len()).To(BeNumerically(">", 0))

		props, ok := e.ItemProperties().Get(id.InstanceId{Index: 0, Generation: 0})
		Expect(ok).To(BeTrue())
		Expect(props[0]).To(Equal(quality))
	})

	It("produces plain fungible stock when InitialProperties is unset", func() {
		e, src, _, _ := twoNodeFactory()

		for i := 0; i < 5; i++ {
			e.Step()
		}

		snap, ok := e.SnapshotNode(src)
		Expect(ok).To(BeTrue())
		Expect(snap.OutputTotal).To(BeNumerically(">", 0))
		Expect(e.ItemProperties().Len()).To(Equal(0))
	})
})
