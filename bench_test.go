package freelist

import "testing"

func BenchmarkInsertErase(b *testing.B) {
	p := New[uint64](1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := p.Insert(uint64(i))
		p.Erase(h)
	}
}

func BenchmarkLookup(b *testing.B) {
	p := New[uint64](1024)
	handles := make([]Handle, 1024)
	for i := range handles {
		handles[i] = p.Insert(uint64(i))
	}
	b.ResetTimer()
	var sink uint64
	for i := 0; i < b.N; i++ {
		sink += *p.Lookup(handles[i&1023])
	}
	_ = sink
}

func BenchmarkGet(b *testing.B) {
	p := New[uint64](1024)
	handles := make([]Handle, 1024)
	for i := range handles {
		handles[i] = p.Insert(uint64(i))
	}
	b.ResetTimer()
	var sink uint64
	for i := 0; i < b.N; i++ {
		v, _ := p.Get(handles[i&1023])
		sink += *v
	}
	_ = sink
}

func BenchmarkContains(b *testing.B) {
	p := New[uint64](1024)
	h := p.Insert(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !p.Contains(h) {
			b.Fatal("lost handle")
		}
	}
}

func BenchmarkIterate(b *testing.B) {
	p := New[uint64](4096)
	for i := 0; i < 4096; i++ {
		p.Insert(uint64(i))
	}
	b.ResetTimer()
	var sink uint64
	for i := 0; i < b.N; i++ {
		for h := range p.All() {
			sink += *p.Lookup(h)
		}
	}
	_ = sink
}
