package db

// CacheKey forms the identity-cache key for a record. Safe as long as table
// names cannot contain the $ sign; that constraint is assumed, not enforced,
// because table names originate from trusted schema metadata.
func CacheKey(table, id string) string {
	return table + "$" + id
}

// IsCached reports whether the host has previously received a full
// materialization of the record identified by key. When a record is cached,
// sending its id alone suffices.
func (d *Database) IsCached(key string) bool {
	_, ok := d.cached[key]
	return ok
}

// markAsCached records that the host now holds a full materialization of the
// record identified by key.
func (d *Database) markAsCached(key string) {
	d.cached[key] = struct{}{}
}

// removeFromCache forgets the record identified by key.
func (d *Database) removeFromCache(key string) {
	delete(d.cached, key)
}

// clearCache wipes the identity cache entirely.
func (d *Database) clearCache() {
	d.cached = make(map[string]struct{})
}
