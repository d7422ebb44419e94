package bus

import (
	"fmt"
	"testing"
)

func BenchmarkPublish(b *testing.B) {
	for _, subs := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("subs=%d", subs), func(b *testing.B) {
			bus := New()
			for i := 0; i < subs; i++ {
				_, _ = bus.Subscribe("bench", func(Event) error { return nil })
			}
			ev := NewEvent("bench", "bench", nil, nil)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bus.Publish(ev)
			}
		})
	}
}

func BenchmarkPublishParallel(b *testing.B) {
	bus := New()
	for i := 0; i < 8; i++ {
		_, _ = bus.Subscribe("bench", func(Event) error { return nil })
	}
	ev := NewEvent("bench", "bench", nil, nil)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = bus.Publish(ev)
		}
	})
}

