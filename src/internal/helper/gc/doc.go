// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gc provides pooled byte buffers for I/O-heavy paths such as reading
// HTTP response bodies from the issue tracker. Reusing buffers keeps garbage
// collection pressure low when many sessions are blocked on backend I/O.
package gc
