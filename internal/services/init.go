package services

import "buysell_back_end/internal/store"

// Process-wide service handles, wired once at startup. Tests swap in
// fakes through InitOrderService.
var (
	Catalog *ScyllaCatalog
	Cart    *RedisCartStore
)

// Init wires the production services against ScyllaDB and Redis.
func Init() {
	Catalog = NewScyllaCatalog()
	Cart = NewRedisCartStore()
	InitOrderService(store.NewOrderStore(), Catalog, Cart)
}
