// Package preview provides a [lumen.Scene] that draws a flat, top-down debug
// view of a scene graph with ebiten, and a small game loop to drive it.
//
//	scene := preview.NewScene()
//	g := lumen.NewGraph(scene)
//	// build nodes, attach renderables and lights ...
//	game := preview.NewGame(g, scene, preview.RunConfig{Title: "preview", ShowFPS: true})
//	game.OnUpdate = func(dt float32) error { tween.Update(dt); return nil }
//	log.Fatal(preview.Run(game))
//
// Renderables are drawn as squares in RenderableColor, lights in LightColor,
// each oriented and scaled by the X/Z block of its world transform.
package preview
