package benchmarks

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ammerola/shopcart/internal/adapters/storage"
	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
	"github.com/ammerola/shopcart/internal/core/services"
	"github.com/ammerola/shopcart/internal/pkg/logger"
	"github.com/ammerola/shopcart/test/helpers"
)

func benchLogger() *slog.Logger {
	return logger.NewLogger(&logger.LogConfig{Level: "error", Output: "discard"}).Logger
}

func BenchmarkCartOperations(b *testing.B) {
	ctx := context.Background()
	log := benchLogger()
	inv := &StaticInventory{Stock: 1 << 30}

	b.Run("AddExisting", func(b *testing.B) {
		engine := services.NewCartEngine(ctx, inv, helpers.NewMemoryStore(), log)
		_ = engine.AddProduct(ctx, 1)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = engine.AddProduct(ctx, 1)
		}
	})

	b.Run("AddNew", func(b *testing.B) {
		engine := services.NewCartEngine(ctx, inv, helpers.NewMemoryStore(), log)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = engine.AddProduct(ctx, i%200+1)
		}
	})

	b.Run("UpdateAmount", func(b *testing.B) {
		store := helpers.NewMemoryStore()
		store.Put(services.DefaultStorageKey, mustMarshal(b, helpers.CreateTestCart(1, 1, 1, 1, 1)))
		engine := services.NewCartEngine(ctx, inv, store, log)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = engine.UpdateProductAmount(ctx, ports.UpdateAmount{ProductID: i%5 + 1, Amount: i%10 + 1})
		}
	})

	b.Run("ReadCart", func(b *testing.B) {
		store := helpers.NewMemoryStore()
		amounts := make([]int, 50)
		for i := range amounts {
			amounts[i] = 1
		}
		store.Put(services.DefaultStorageKey, mustMarshal(b, helpers.CreateTestCart(amounts...)))
		engine := services.NewCartEngine(ctx, inv, store, log)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = engine.Cart()
		}
	})
}

func BenchmarkCartParallelAdds(b *testing.B) {
	ctx := context.Background()
	engine := services.NewCartEngine(ctx, &StaticInventory{Stock: 1 << 30}, helpers.NewMemoryStore(), benchLogger())

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = engine.AddProduct(ctx, 1)
		}
	})
}

func BenchmarkFileStoreSave(b *testing.B) {
	ctx := context.Background()
	store := storage.NewMemoryStore(benchLogger())
	data := mustMarshal(b, helpers.CreateTestCart(2, 1, 3, 1, 1, 2, 4, 1))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save(ctx, services.DefaultStorageKey, data)
	}
}

func mustMarshal(b *testing.B, cart domain.Cart) []byte {
	b.Helper()
	data, err := json.Marshal(cart)
	if err != nil {
		b.Fatal(err)
	}
	return data
}
