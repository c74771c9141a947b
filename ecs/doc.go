// Package ecs provides a lumen [lumen.Scene] backed by a [Donburi] world.
//
// Every renderable and light a node attaches becomes a Donburi entity
// carrying [Renderable] or [Light], plus [Transform], [Visibility] and
// [Handle] components. ECS systems can query those directly, and
// subscribe to [EntityEventType] to learn about registrations, deletions
// and visibility changes. Events are queued and delivered on Commit.
//
// Usage:
//
//	world := donburi.NewWorld()
//	store := ecs.NewStore(world)
//	g := lumen.NewGraph(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
