// Package models defines the core domain models for tripledger.
//
// # Models
//
//   - Trip: the aggregate the balancing engine operates on; owns persons and expenses
//   - Person: a trip member, identified by an opaque id
//   - Expense: a shared expense paid by one person and split among participants
//   - Payment: a recorded real-world transfer that offsets computed balances
//   - User: a registered account that owns trips
//
// # Design Principles
//
//  1. **Value snapshots**: a Trip is loaded as a complete aggregate and handed
//     to the calculator as a stable snapshot; the engine never mutates it.
//  2. **Avoid circular references**: relationships use id strings, not pointers.
//  3. **Ordered slices**: Persons and Expenses keep insertion order so derived
//     output is deterministic and testable.
package models
