// Package privacy provides authorization policies for query services.
//
// A policy is an ordered list of rules. Each rule returns a decision and
// may narrow the operation with a filter; the filters of the evaluated
// rules are combined with a logical AND and merged into the caller's query.
//
// # Rule Evaluation
//
// Rules are evaluated in order until one returns a final decision:
//
//   - Allow: grants access and stops evaluation
//   - Deny: denies access and stops evaluation
//   - Skip: continues to the next rule
//
// If all rules return Skip, the operation proceeds with the gathered
// filters.
//
// # Built-in Rules
//
//   - DenyIfNoViewer: denies if no viewer is present in context
//   - AlwaysAllowRule, AlwaysDenyRule: fixed decisions
//   - HasRole, HasAnyRole: allow if the viewer has a role
//   - OwnerFilter: narrows to records owned by the viewer
//   - TenantFilter: narrows to records of the viewer's tenant
//   - OnOperation, DenyOperationRule: restrict rules to operation kinds
//   - FilterFunc: narrows with an arbitrary filter
//
// # Usage
//
//	policy := privacy.NewPolicy(
//	    privacy.DenyIfNoViewer[Todo](),
//	    privacy.HasRole[Todo]("admin"),
//	    privacy.TenantFilter[Todo]("tenantId"),
//	    privacy.OwnerFilter[Todo]("ownerId"),
//	)
//	todos := privacy.NewAuthorizedQueryService(store, policy)
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "u1", TenantID: "t1"})
//	mine, err := todos.Query(ctx, query.Query[Todo]{})
package privacy
