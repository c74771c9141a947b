// Package lumen is the scene graph of a real-time ray-tracing SDK.
//
// Lumen keeps a hierarchy of nodes, each with a local transform and any number
// of attached renderables and lights, and pushes the resulting world
// transforms into a rendering [Scene] once per frame. The Scene (GPU entity
// storage, acceleration structures, render passes) is supplied by the caller;
// lumen only talks to it through the [Scene] interface.
//
// # Quick start
//
//	g := lumen.NewGraph(scene)
//	defer g.Close()
//
//	car := g.CreateNode(nil) // under g.Root()
//	car.Name = "car"
//	car.AttachRenderable(carModel, lumen.DefaultInstanceMask)
//
//	wheel := g.CreateNode(car)
//	wheel.SetTransform(lumen.Translate(1, 0, 0))
//
//	// every frame
//	car.SetTransform(lumen.Translate(x, 0, 0))
//	g.RefreshSceneGPUData(cmd)
//
// # World transforms
//
// A node's world transform is the product of its ancestors' local transforms
// and its own. It is cached per node behind a dirty flag: editing a local
// transform, or moving a node with [Node.SetParent], dirties the node's
// subtree, and the next [Node.WorldTransform] call recomputes only the dirty
// part of that node's ancestor chain.
//
// # Safety
//
// Operations that would break the tree (reparenting under a descendant or a
// node of another graph, deleting through the wrong graph) are logged and
// ignored. Redundant attach/detach calls are logged as warnings. Calls that can
// only come from a bug in the caller panic.
//
// Graphs are not safe for concurrent use. Animate nodes with [TransformTween]
// (easing via [gween]); inspect a running graph over HTTP with the inspect
// package; use the ecs package ([Donburi]) or the preview package
// ([Ebitengine]) as ready-made Scene implementations.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
// [Ebitengine]: https://ebitengine.org
package lumen
