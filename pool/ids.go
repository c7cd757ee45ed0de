package pool

// idAllocator hands out request ids. An id is unique while its request is
// in flight; assigned ids are recycled once the request completes. Callers
// hold the owning dispatcher's lock.
type idAllocator struct {
	next     uint64
	free     []uint64
	inflight map[uint64]*Future
}

func newIDAllocator() idAllocator {
	return idAllocator{inflight: make(map[uint64]*Future)}
}

// acquire registers req, assigning an id when it has none. auto reports
// whether the id was assigned here.
func (a *idAllocator) acquire(req *Request) (fut *Future, auto bool, err error) {
	if req.ID == 0 {
		req.ID = a.assign()
		auto = true
	} else if _, busy := a.inflight[req.ID]; busy {
		return nil, false, ErrDuplicateID
	}
	fut = newFuture(req.ID)
	a.inflight[req.ID] = fut
	return fut, auto, nil
}

func (a *idAllocator) assign() uint64 {
	for len(a.free) > 0 {
		id := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		if _, busy := a.inflight[id]; !busy {
			return id
		}
	}
	for {
		a.next++
		if _, busy := a.inflight[a.next]; !busy {
			return a.next
		}
	}
}

func (a *idAllocator) release(id uint64, auto bool) {
	delete(a.inflight, id)
	if auto {
		a.free = append(a.free, id)
	}
}
