package di

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/internal/storeinfra"
	"github.com/goliatone/go-property-listing/model"
)

func newBenchContainer(b *testing.B, listings int) *Container {
	b.Helper()

	mem := storeinfra.NewMemory()
	owner := primitive.NewObjectID()
	ctx := context.Background()
	for i := 0; i < listings; i++ {
		_, err := mem.Properties().Insert(ctx, model.Property{
			PropertyID: fmt.Sprintf("PROP%d", 1000+i),
			Title:      fmt.Sprintf("Listing %d", i),
			Type:       model.TypeApartment,
			Price:      float64(100000 + i*1000),
			State:      "Maharashtra",
			City:       []string{"Pune", "Mumbai", "Nagpur"}[i%3],
			Amenities:  "gym|pool",
			CreatedBy:  owner,
		})
		if err != nil {
			b.Fatal(err)
		}
	}

	container, err := NewContainer(ctx, testConfig(), WithLogger(zerolog.Nop()), WithStores(Stores{
		Properties:      mem.Properties(),
		Favourites:      mem.Favourites(),
		Recommendations: mem.Recommendations(),
		Users:           mem.Users(),
	}))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = container.Close(context.Background()) })
	return container
}

func BenchmarkSearch_CacheHit(b *testing.B) {
	container := newBenchContainer(b, 1000)
	properties := container.Services().Properties
	params := url.Values{"cities": {"Pune"}, "amenities": {"gym"}, "page": {"2"}}
	ctx := context.Background()

	if _, _, err := properties.Search(ctx, params); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := properties.Search(ctx, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch_DistinctQueries(b *testing.B) {
	container := newBenchContainer(b, 1000)
	properties := container.Services().Properties
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		params := url.Values{"priceFrom": {fmt.Sprint(100000 + i%5000)}}
		if _, _, err := properties.Search(ctx, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet_Parallel(b *testing.B) {
	container := newBenchContainer(b, 100)
	properties := container.Services().Properties
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, _, err := properties.Get(ctx, fmt.Sprintf("PROP%d", 1000+i%100)); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}
