//go:build !nogpu

package main

// Register the Vulkan backend so -backend=gpu and -backend=auto can open
// a device.
import _ "github.com/gogpu/wgpu/hal/vulkan"
