// Package query defines the backend-agnostic query model: filters,
// sorting, paging and aggregates, together with the pure functions that
// merge them and rename their fields between record types.
//
// # Filters
//
// A Filter is a tree of field comparisons joined by And and Or groups:
//
//	f := query.Filter[Todo]{
//	    Fields: map[string]query.Comparison{
//	        "status": query.Eq("open"),
//	    },
//	    Or: []query.Filter[Todo]{
//	        query.Where[Todo]("priority", query.Gt(1)),
//	        query.Where[Todo]("tag", query.In("a", "b")),
//	    },
//	}
//	fmt.Println(f) // status == "open" && (priority > 1 || tag in ["a","b"])
//
// The type parameter names the record type a filter applies to. It is never
// stored and only keeps filters over different record types apart.
//
// # Field maps
//
// A FieldMap renames fields from one record type to another. Every field a
// filter, sort or aggregate references must be mapped, otherwise the
// transform fails with a *querykit.UnmappedFieldError:
//
//	m := query.FieldMap[TodoDTO, TodoEntity]{"id": "entityId", "title": "entityTitle"}
//	eq, err := query.TransformQuery(q, m)
//
// # Merging
//
// MergeQuery narrows a query with another, conjoining filters and letting
// the override's paging and sorting win. Relation bindings and authorization
// policies use it to apply their filters without discarding caller options.
package query
