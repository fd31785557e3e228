// Package vkx is a low-level Vulkan resource and frame-lifecycle manager
// intended to sit beneath a 2D renderer. It owns device and surface
// bootstrap, swapchain creation and recreation, double-buffered frame
// synchronization, memory-backed buffer and image allocation with staged
// uploads, image layout transitions, and command buffer submission.
//
// Everything hangs off a Device created by Bootstrap. The package never
// terminates the process: all fallible operations return an error and the
// caller decides what is fatal. Transient swapchain staleness is handled
// internally by the frame loop and never surfaces as an error.
//
// The game or scene layer stays outside this package: it decodes assets,
// loads shader bytecode, writes per-frame data into a persistently mapped
// uniform ring, and records draw commands through the callback passed to
// Frames.Draw.
package vkx
