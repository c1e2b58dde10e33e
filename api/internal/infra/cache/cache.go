package cache

import (
	"sync"
	"time"
)

func InitStorage() *Cache {
	return &Cache{
		Storage: sync.Map{},
	}
}

func (c *Cache) Set(k any, v any, expiration time.Duration) {
	c.Storage.Store(k, v)
	go c.delByExp(k, v, expiration)
}

// sets value without expiration
func (c *Cache) SetNoExp(k any, v any) {
	c.Storage.Store(k, v)
}

// stores v only if k is absent. returns true if stored
func (c *Cache) SetNX(k any, v any, expiration time.Duration) bool {
	_, loaded := c.Storage.LoadOrStore(k, v)
	if loaded {
		return false
	}
	if expiration > 0 {
		go c.delByExp(k, v, expiration)
	}
	return true
}

func (c *Cache) Del(k any) {
	c.Storage.Delete(k)
}

// deletes k only while it still holds v
func (c *Cache) DelIf(k any, v any) bool {
	return c.Storage.CompareAndDelete(k, v)
}

func (c *Cache) Load(k any) any {
	v, _ := c.Storage.Load(k)
	return v
}

func (c *Cache) delByExp(k any, v any, expiration time.Duration) {
	time.Sleep(expiration)
	c.Storage.CompareAndDelete(k, v)
}
