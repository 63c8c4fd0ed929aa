// Copyright 2024 The Prbot Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package remap provides the id-remapping table used by store/postgres's
// ImportAll: export envelopes carry the exporting database's ids, which
// must never collide with ids the importing database issues itself.
package remap

// IDMap tracks the association between an export's old ids and the ids a
// fresh import allocates for them, so child records can be relinked.
type IDMap struct {
	old2new map[uint64]uint64
}

// New builds an empty IDMap.
func New() *IDMap {
	return &IDMap{old2new: make(map[uint64]uint64)}
}

// Put records that oldID was reassigned newID.
func (m *IDMap) Put(oldID, newID uint64) {
	m.old2new[oldID] = newID
}

// Get resolves oldID to its freshly allocated id. Ok is false if oldID was
// never recorded, which import code treats as "no parent" (zero value).
func (m *IDMap) Get(oldID uint64) (uint64, bool) {
	newID, ok := m.old2new[oldID]
	return newID, ok
}

// MustGet resolves oldID, returning zero for an unrecorded id instead of
// panicking; a zero parent id then fails the importing insert's foreign-key
// check.
func (m *IDMap) MustGet(oldID uint64) uint64 {
	return m.old2new[oldID]
}
