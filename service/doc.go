// Package service defines the QueryService contract and the services that
// compose it.
//
// A QueryService[T] reads and writes records of type T and traverses their
// named relations. The package provides:
//
//   - NoOpQueryService, which implements nothing
//   - ProxyQueryService, the pass-through that decorators embed
//   - RelationQueryService, which resolves relations through other services
//   - StatsQueryService and CachedQueryService decorators
//
// Relations are bound once, at construction:
//
//	customers := service.NewRelationQueryService[Customer](customerStore, service.Relations[Customer]{
//	    "orders": service.BindKeyed(orderStore, "customerId",
//	        func(c Customer) string { return c.ID },
//	        func(o Order) string { return o.CustomerID },
//	    ),
//	    "latestOrder": service.Bind(orderStore, func(c Customer) query.Query[Order] {
//	        return query.Query[Order]{
//	            Filter:  query.Where[Order]("customerId", query.Eq(c.ID)),
//	            Sorting: []query.SortField{query.Desc("createdAt")},
//	        }
//	    }),
//	})
//
//	orders, err := service.QueryRelations(ctx, customers, "orders", c, query.Query[Order]{
//	    Filter: query.Where[Order]("status", query.Eq("open")),
//	})
package service
