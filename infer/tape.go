package infer

import "sync"

// A result is the outcome of decoding one batch.
type result struct {
	Tags [][]int
	Err  error
}

// A resultTape collects batch results which may be
// written in any order and reads them back in batch
// order, as soon as each next result is available.
type resultTape struct {
	lock     sync.Mutex
	results  map[int]*result
	done     bool
	nextWait chan struct{}
}

func newResultTape() *resultTape {
	return &resultTape{
		results:  map[int]*result{},
		nextWait: make(chan struct{}),
	}
}

// Write stores the result of batch idx.
func (r *resultTape) Write(idx int, res *result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.done {
		panic("write to closed tape")
	}
	if _, ok := r.results[idx]; ok {
		panic("duplicate result")
	}
	r.results[idx] = res
	close(r.nextWait)
	r.nextWait = make(chan struct{})
}

// Close marks the tape as complete.
// Readers stop at the first missing index.
func (r *resultTape) Close() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.done = true
	close(r.nextWait)
}

// Read creates a channel which is sent the results in
// index order, starting at 0.
//
// The channel is closed once the tape is closed and the
// next index is missing.
func (r *resultTape) Read() <-chan *result {
	res := make(chan *result, 1)
	go func() {
		defer close(res)
		for i := 0; ; i++ {
			r.lock.Lock()
			for r.results[i] == nil {
				if r.done {
					r.lock.Unlock()
					return
				}
				waiter := r.nextWait
				r.lock.Unlock()
				<-waiter
				r.lock.Lock()
			}
			item := r.results[i]
			delete(r.results, i)
			r.lock.Unlock()
			res <- item
		}
	}()
	return res
}
