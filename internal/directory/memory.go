package directory

import (
	"context"
	"sync"
)

// Memory is an in-process directory backed by a static table.
type Memory struct {
	mu         sync.RWMutex
	byPhone    map[string]Record
	byNational map[string]Record
}

// NewMemory builds a directory from the provided records. Records are indexed
// by both their national phone number and the country-code-prefixed form.
func NewMemory(records ...Record) *Memory {
	m := &Memory{
		byPhone:    make(map[string]Record),
		byNational: make(map[string]Record),
	}
	for _, r := range records {
		m.put(r)
	}
	return m
}

// NewDemo returns a directory seeded with the demo enrolments.
func NewDemo() *Memory {
	return NewMemory(DemoRecords()...)
}

// DemoRecords is the fixture table used in development and demo deployments.
func DemoRecords() []Record {
	return []Record{
		{NationalID: "123456789012", DisplayName: "Rajesh Kumar", PostalAddress: "123, Main Street, New Delhi, 110001", Phone: "+91 9876543210", Tier: TierPremium},
		{NationalID: "234567890123", DisplayName: "Priya Sharma", PostalAddress: "456, Park Avenue, Mumbai, 400001", Phone: "+91 8765432109", Tier: TierBasic},
		{NationalID: "345678901234", DisplayName: "Amit Singh", PostalAddress: "789, Gandhi Road, Bangalore, 560001", Phone: "+91 7654321098", Tier: TierPremium},
		{NationalID: "456789012345", DisplayName: "Sunita Devi", PostalAddress: "321, Temple Street, Chennai, 600001", Phone: "+91 6543210987", Tier: TierBasic},
		{NationalID: "444452518437", DisplayName: "Vikram Patel", PostalAddress: "567, MG Road, Pune, 411001", Phone: "+91 9123456789", Tier: TierPremium},
	}
}

func (m *Memory) put(r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range lookupCandidates(r.Phone) {
		m.byPhone[key] = r
	}
	m.byNational[r.NationalID] = r
}

// LookupByPhone resolves a phone in any common notation.
func (m *Memory) LookupByPhone(_ context.Context, phone string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, key := range lookupCandidates(phone) {
		if r, ok := m.byPhone[key]; ok {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// LookupByNationalID resolves a national identity number.
func (m *Memory) LookupByNationalID(_ context.Context, nationalID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byNational[nationalID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}
