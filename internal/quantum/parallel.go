package quantum

import (
	"runtime"
	"sync"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks, one
// goroutine per chunk. Work smaller than minChunk runs inline.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.NumCPU()
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ConfigPool recycles scratch configuration vectors of a fixed size.
type ConfigPool struct {
	pool sync.Pool
	size int
}

func NewConfigPool(size int) *ConfigPool {
	return &ConfigPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make(Config, size)
			},
		},
	}
}

func (p *ConfigPool) Get() Config {
	return p.pool.Get().(Config)
}

func (p *ConfigPool) Put(c Config) {
	if len(c) == p.size {
		for i := range c {
			c[i] = 0
		}
		p.pool.Put(c)
	}
}
