/*
Package catalog holds the ordered question catalog consumed by the flow engine.

A Catalog is immutable once built. New validates the structural rules the engine
relies on: unique IDs, backward-only visibility references, and the presence of
the two jump markers (the vehicle sub-flow restart target and the post-vehicle
target).

Catalogs can be built in code (see Default) or loaded from YAML with Load/Parse.
*/
package catalog
