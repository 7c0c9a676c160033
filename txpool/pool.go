// Copyright 2026 The gantry Authors
// This file is part of the gantry library.
//
// The gantry library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gantry library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gantry library. If not, see <http://www.gnu.org/licenses/>.

// Package txpool exposes the read-only introspection surface of a pending
// transaction pool together with the RPC API serving it.
package txpool

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Pool is the query surface of a transaction pool consumed by the pool
// introspection RPC API. Every call observes one atomic snapshot of the pool;
// no consistency is guaranteed across calls.
type Pool interface {
	// Content retrieves all currently known transactions, grouped into
	// pending and queued sets, keyed by sender account.
	Content() (pending, queued map[common.Address][]*types.Transaction)

	// ContentFrom retrieves the pending and queued transactions of one
	// sender account.
	ContentFrom(addr common.Address) (pending, queued []*types.Transaction)

	// Stats reports the number of currently pending and queued transactions.
	Stats() (pending, queued int)
}

// StaticPool is a Pool whose content is assembled by hand. It backs the dev
// node and the API tests, where transactions are planted rather than gossiped.
type StaticPool struct {
	mu      sync.RWMutex
	pending map[common.Address][]*types.Transaction
	queued  map[common.Address][]*types.Transaction
}

// NewStaticPool creates an empty hand-fed transaction pool.
func NewStaticPool() *StaticPool {
	return &StaticPool{
		pending: make(map[common.Address][]*types.Transaction),
		queued:  make(map[common.Address][]*types.Transaction),
	}
}

// AddPending plants a transaction into the pending set of the given sender.
// Transactions are reported in insertion order.
func (p *StaticPool) AddPending(from common.Address, tx *types.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[from] = append(p.pending[from], tx)
}

// AddQueued plants a transaction into the queued set of the given sender.
func (p *StaticPool) AddQueued(from common.Address, tx *types.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queued[from] = append(p.queued[from], tx)
}

// Content implements Pool, returning a deep copy of both sets.
func (p *StaticPool) Content() (map[common.Address][]*types.Transaction, map[common.Address][]*types.Transaction) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyContent(p.pending), copyContent(p.queued)
}

// ContentFrom implements Pool.
func (p *StaticPool) ContentFrom(addr common.Address) ([]*types.Transaction, []*types.Transaction) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pending := make([]*types.Transaction, len(p.pending[addr]))
	copy(pending, p.pending[addr])
	queued := make([]*types.Transaction, len(p.queued[addr]))
	copy(queued, p.queued[addr])
	return pending, queued
}

// Stats implements Pool.
func (p *StaticPool) Stats() (int, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var pending, queued int
	for _, txs := range p.pending {
		pending += len(txs)
	}
	for _, txs := range p.queued {
		queued += len(txs)
	}
	return pending, queued
}

func copyContent(content map[common.Address][]*types.Transaction) map[common.Address][]*types.Transaction {
	cpy := make(map[common.Address][]*types.Transaction, len(content))
	for addr, txs := range content {
		list := make([]*types.Transaction, len(txs))
		copy(list, txs)
		cpy[addr] = list
	}
	return cpy
}
