// Package drm opens DRM (Direct Rendering Manager) device nodes and
// negotiates the per-file state the kernel keeps for them: client
// capabilities and the master lock. Mode-setting calls live in the mode
// package.
package drm
