// Package resolver turns a declared module and a version into callable entry
// points from the module's shared library.
//
// A module library exports three symbols named after the lowercased module
// name: _params_mod_<name>_, _init_mod_<name>_ and _exec_mod_<name>_. The
// exec symbol has one of two calling signatures; which one is decided by
// the module's catalog category, never by inspecting the library.
//
// Open binds a library without caching. Acquire shares one binding per
// artifact and category between callers and closes the library when the
// last Handle is released.
package resolver
