// Package normalize rewrites module-style import/export syntax into
// bindings resolvable inside the restricted execution scope, and
// concatenates multi-file projects into a single bundle.
//
// Rewriting is best-effort and never fails; syntactically broken source
// surfaces later, in transpilation or evaluation.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/rendermark/internal/fileset"
)

// NamespaceVar is the shared global-namespace object holding each
// sibling file's default export, keyed by file basename.
const NamespaceVar = "__modules"

var (
	// import { useState } from 'react' / import React, { ... } from 'react'
	reactNamedImport = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:React\s*,\s*)?\{([^}]*)\}\s+from\s+['"]react['"];?[ \t]*$`)
	// import React from 'react' / import * as React from 'react'
	reactImport = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:\*\s+as\s+)?React\s+from\s+['"]react['"];?[ \t]*$`)
	// import ReactDOM from 'react-dom/client' and friends
	reactDOMImport = regexp.MustCompile(`(?m)^[ \t]*import\s+[^'"\n]+from\s+['"]react-dom[^'"]*['"];?[ \t]*$`)
	// import Button, { helper } from './Button'
	relativeMixedImport = regexp.MustCompile(`(?m)^[ \t]*import\s+(\w+)\s*,\s*\{([^}]*)\}\s+from\s+['"](\.{1,2}/[^'"]+)['"];?[ \t]*$`)
	// import { a, b } from './lib'
	relativeNamedImport = regexp.MustCompile(`(?m)^[ \t]*import\s+\{([^}]*)\}\s+from\s+['"](\.{1,2}/[^'"]+)['"];?[ \t]*$`)
	// import Button from './Button'
	relativeDefaultImport = regexp.MustCompile(`(?m)^[ \t]*import\s+(\w+)\s+from\s+['"](\.{1,2}/[^'"]+)['"];?[ \t]*$`)
	// import './styles.css' (side-effect only)
	sideEffectImport = regexp.MustCompile(`(?m)^[ \t]*import\s+['"][^'"]+['"];?[ \t]*$`)
	// export default <expr>
	exportDefault = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+`)
	// export const/let/var/function/class
	namedExport = regexp.MustCompile(`(?m)^([ \t]*)export\s+(const|let|var|function|class)\b`)
)

// Bundle derives a single executable text from a FileSet. Non-entry
// files come first, each wrapped so its default export assigns into the
// shared namespace under its basename; the entry file is appended last
// and resolves sibling references through namespace lookups.
func Bundle(fs *fileset.FileSet, multiFile bool) string {
	var b strings.Builder

	if multiFile && fs.Len() > 1 {
		b.WriteString("var " + NamespaceVar + " = {};\n")
		for _, name := range fs.Siblings() {
			src, _ := fs.Get(name)
			key := fileset.Basename(name)
			b.WriteString(fmt.Sprintf("%s[%q] = (function () {\n", NamespaceVar, key))
			b.WriteString(Source(src))
			b.WriteString("\n})();\n")
		}
	}

	entrySrc, _ := fs.Get(fs.Entry())
	b.WriteString(Source(entrySrc))
	return b.String()
}

// Source applies the per-file rewrites:
//  1. framework imports are removed; named imports survive as comments
//  2. relative same-project imports become namespace lookups
//  3. a default export becomes a return of its expression
//  4. named export keywords are stripped
func Source(src string) string {
	src = reactNamedImport.ReplaceAllStringFunc(src, func(m string) string {
		names := reactNamedImport.FindStringSubmatch(m)[1]
		return "// uses: " + strings.TrimSpace(names)
	})
	src = reactImport.ReplaceAllString(src, "")
	src = reactDOMImport.ReplaceAllString(src, "")

	src = relativeMixedImport.ReplaceAllStringFunc(src, func(m string) string {
		g := relativeMixedImport.FindStringSubmatch(m)
		key := fileset.Basename(g[3])
		return fmt.Sprintf("const %s = %s[%q]; const {%s} = %s[%q];",
			g[1], NamespaceVar, key, g[2], NamespaceVar, key)
	})
	src = relativeNamedImport.ReplaceAllStringFunc(src, func(m string) string {
		g := relativeNamedImport.FindStringSubmatch(m)
		key := fileset.Basename(g[2])
		return fmt.Sprintf("const {%s} = %s[%q];", g[1], NamespaceVar, key)
	})
	src = relativeDefaultImport.ReplaceAllStringFunc(src, func(m string) string {
		g := relativeDefaultImport.FindStringSubmatch(m)
		key := fileset.Basename(g[2])
		return fmt.Sprintf("const %s = %s[%q];", g[1], NamespaceVar, key)
	})
	src = sideEffectImport.ReplaceAllString(src, "")

	src = exportDefault.ReplaceAllString(src, "${1}return ")
	src = namedExport.ReplaceAllString(src, "${1}$2")
	return src
}
