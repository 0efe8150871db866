// Package platform provides filesystem checks whose behavior differs across
// operating systems, such as deciding whether a library directory is
// actually readable by the current process.
package platform
