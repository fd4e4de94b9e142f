package formatter_test

import (
	"errors"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/livebud/esm/internal/container"
	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/resolver"
	"github.com/matryer/is"
	"github.com/matthewmueller/diff"
	"github.com/matthewmueller/virt"
)

func format(t testing.TB, code string) string {
	t.Helper()
	formatted, err := js.Format(dedent.Dedent(code))
	if err != nil {
		t.Fatalf("unable to format %s: %s", code, err)
	}
	return formatted
}

// transform converts entries and returns the output files by name
func transform(f formatter.Interface, fsys virt.Map, entries ...string) (map[string]string, error) {
	c, err := container.New(f, resolver.New(fsys))
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if _, err := c.GetModule(entry, nil); err != nil {
			return nil, err
		}
	}
	outputs, err := c.Transform()
	if err != nil {
		return nil, err
	}
	files := map[string]string{}
	for _, output := range outputs {
		files[output.Filename] = output.Code
	}
	return files, nil
}

func newFormatter(t testing.TB, name string) formatter.Interface {
	t.Helper()
	f, err := formatter.New(name, nil)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// equal converts the entry and compares the named output file
func equal(t *testing.T, f formatter.Interface, fsys virt.Map, entry, file, expect string) {
	t.Helper()
	files, err := transform(f, fsys, entry)
	if err != nil {
		t.Fatal(err)
	}
	actual, ok := files[file]
	if !ok {
		t.Fatalf("no output file %q", file)
	}
	diff.TestString(t, format(t, actual), format(t, expect))
}

func TestNames(t *testing.T) {
	is := is.New(t)
	is.Equal(formatter.Names(), []string{"amd", "bundle", "commonjs", "export-variable", "globals", "module-variable"})
}

func TestUnknownFormat(t *testing.T) {
	is := is.New(t)
	_, err := formatter.New("umd", nil)
	is.True(err != nil)
	is.True(errors.Is(err, module.ErrConfig))
	var merr *module.Error
	is.True(errors.As(err, &merr))
	is.Equal(merr.Kind, module.Configuration)
}

const plain = `
	var a = 1;
	function b() {
		return a + 1;
	}
	console.log(b());
`

func TestNoop(t *testing.T) {
	tests := []struct {
		format string
		file   string
		expect string
	}{
		{"commonjs", "index.js", `"use strict";` + plain},
		{"amd", "index.js", `define([], function() { "use strict";` + plain + `});`},
		{"globals", "index.js", `(function() { "use strict";` + plain + `})();`},
		{"module-variable", "bundle.js", `(function() { "use strict"; (function() {` + plain + `})(); }).call(this);`},
		{"export-variable", "bundle.js", `(function() { "use strict"; (function() {` + plain + `})(); }).call(this);`},
		{"bundle", "bundle.js", `(function() { "use strict";` + plain + `}).call(this);`},
	}
	for _, test := range tests {
		t.Run(test.format, func(t *testing.T) {
			f := newFormatter(t, test.format)
			equal(t, f, virt.Map{"index.js": plain}, "index.js", test.file, test.expect)
		})
	}
}

func TestImportReassignment(t *testing.T) {
	fsys := virt.Map{
		"a.js": "import { b } from './b';\nconsole.log(b);\nb = 2;",
		"b.js": `export var b = 1;`,
		"c.js": "import { b as c } from './b';\n\nc++;",
		"d.js": "import * as ns from './b';\n[ns] = [];",
	}
	tests := []struct {
		entry string
		line  int
	}{
		{"a.js", 3},
		{"c.js", 3},
		{"d.js", 2},
	}
	for _, name := range formatter.Names() {
		for _, test := range tests {
			t.Run(name+"/"+test.entry, func(t *testing.T) {
				is := is.New(t)
				_, err := transform(newFormatter(t, name), fsys, test.entry)
				is.True(err != nil)
				is.True(errors.Is(err, module.ErrImportAssign))
				var merr *module.Error
				is.True(errors.As(err, &merr))
				is.Equal(merr.Kind, module.Semantic)
				is.Equal(merr.Path, test.entry)
				is.Equal(merr.Line, test.line)
			})
		}
	}
}

func TestExportStar(t *testing.T) {
	fsys := virt.Map{
		"a.js": `export * from './b';`,
		"b.js": `export var b = 1;`,
		"c.js": `export * as ns from './b';`,
	}
	for _, name := range formatter.Names() {
		for _, entry := range []string{"a.js", "c.js"} {
			t.Run(name+"/"+entry, func(t *testing.T) {
				is := is.New(t)
				_, err := transform(newFormatter(t, name), fsys, entry)
				is.True(err != nil)
				is.True(errors.Is(err, module.ErrUnsupported))
				var merr *module.Error
				is.True(errors.As(err, &merr))
				is.Equal(merr.Kind, module.Classification)
				is.Equal(merr.Line, 1)
			})
		}
	}
}

func TestNestedImport(t *testing.T) {
	fsys := virt.Map{
		"a.js": "if (true) {\n  import './b';\n}",
		"b.js": ``,
	}
	for _, name := range formatter.Names() {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := transform(newFormatter(t, name), fsys, "a.js")
			is.True(errors.Is(err, module.ErrNotTopLevel))
		})
	}
}

func TestCommonJSEarlyLate(t *testing.T) {
	equal(t, newFormatter(t, "commonjs"), virt.Map{
		"a.js": `
			console.log(f());
			export var a = 1;
			export function f() {
				return a;
			}
			export class C {}
		`,
	}, "a.js", "a.js", `
		"use strict";
		exports.f = f;
		console.log(f());
		var a = 1;
		function f() {
			return a;
		}
		class C {}
		exports.a = a;
		exports.C = C;
	`)
}

func TestCommonJSImports(t *testing.T) {
	equal(t, newFormatter(t, "commonjs"), virt.Map{
		"a.js": `
			import { c as d, x } from './lib/b';
			import * as ns from './lib/b';
			import './side';
			function f(d) {
				return d + x;
			}
			console.log(d, f(x), ns);
		`,
		"lib/b.js": `export var c = 1; export var x = 2;`,
		"side.js":  `console.log("side");`,
	}, "a.js", "a.js", `
		"use strict";
		var __dependency1__ = require("./lib/b");
		require("./side");
		function f(d) {
			return d + __dependency1__.x;
		}
		console.log(__dependency1__.c, f(__dependency1__.x), __dependency1__);
	`)
}

func TestCommonJSDefault(t *testing.T) {
	fsys := virt.Map{
		"a.js": `import b from './b'; import c from './c'; import d from './d'; console.log(b(), c(), d);`,
		"b.js": `export default function() { return 1; }`,
		"c.js": `console.log(c()); export default function c() { return 2; }`,
		"d.js": `var d = 3; export default d; d = 4;`,
	}
	f := newFormatter(t, "commonjs")
	files, err := transform(f, fsys, "a.js")
	if err != nil {
		t.Fatal(err)
	}
	diff.TestString(t, format(t, files["a.js"]), format(t, `
		"use strict";
		var __dependency1__ = require("./b");
		var __dependency2__ = require("./c");
		var __dependency3__ = require("./d");
		console.log(__dependency1__["default"](), __dependency2__["default"](), __dependency3__["default"]);
	`))
	diff.TestString(t, format(t, files["b.js"]), format(t, `
		"use strict";
		exports["default"] = function() { return 1; };
	`))
	diff.TestString(t, format(t, files["c.js"]), format(t, `
		"use strict";
		exports["default"] = c;
		console.log(c());
		function c() { return 2; }
	`))
	diff.TestString(t, format(t, files["d.js"]), format(t, `
		"use strict";
		var d = 3;
		exports["default"] = d;
		d = 4;
	`))
}

func TestCommonJSReexport(t *testing.T) {
	equal(t, newFormatter(t, "commonjs"), virt.Map{
		"a.js": `
			import { b } from './b';
			export { b as c } from './b';
			export { b };
		`,
		"b.js": `export var b = 1;`,
	}, "a.js", "a.js", `
		"use strict";
		var __dependency1__ = require("./b");
		Object.defineProperty(exports, "c", { enumerable: true, get: function() { return __dependency1__.b; } });
		Object.defineProperty(exports, "b", { enumerable: true, get: function() { return __dependency1__.b; } });
	`)
}

func TestCommonJSReassignment(t *testing.T) {
	equal(t, newFormatter(t, "commonjs"), virt.Map{
		"a.js": `
			export var a = 1;
			export { a as z };
			a = 2;
			a++;
			var b = a--;
			++a;
			[a] = [3];
			function inc() {
				var a = 0;
				a++;
			}
		`,
	}, "a.js", "a.js", `
		"use strict";
		var __tmp__;
		var a = 1;
		exports.a = exports.z = a = 2;
		a++, exports.a = exports.z = a;
		var b = (__tmp__ = a--, exports.a = exports.z = a, __tmp__);
		exports.a = exports.z = ++a;
		([a] = [3], exports.a = exports.z = a);
		function inc() {
			var a = 0;
			a++;
		}
		exports.a = a;
		exports.z = a;
	`)
}

func TestAMD(t *testing.T) {
	f := newFormatter(t, "amd")
	fsys := virt.Map{
		"a.js": `import { b } from './b'; export var a = b;`,
		"b.js": `export var b = 1;`,
		"c.js": `import './b'; console.log("c");`,
	}
	equal(t, f, fsys, "a.js", "a.js", `
		define(["./b", "exports"], function(__dependency1__, __exports__) {
			"use strict";
			var a = __dependency1__.b;
			__exports__.a = a;
		});
	`)
	equal(t, newFormatter(t, "amd"), fsys, "c.js", "c.js", `
		define(["./b"], function(__dependency1__) {
			"use strict";
			console.log("c");
		});
	`)
}

func TestGlobals(t *testing.T) {
	fsys := virt.Map{
		"a.js": `import { b } from './b'; export var a = b;`,
		"b.js": `export var b = 1;`,
	}
	equal(t, newFormatter(t, "globals"), fsys, "a.js", "a.js", `
		(function(__dependency1__, __exports__) {
			"use strict";
			var a = __dependency1__.b;
			__exports__.a = a;
		})(window.b, window.a = window.a || {});
	`)
	f, err := formatter.New("globals", &formatter.Options{
		Root:  "self",
		Names: map[string]string{"b.js": "Bee"},
	})
	if err != nil {
		t.Fatal(err)
	}
	equal(t, f, fsys, "a.js", "b.js", `
		(function(__exports__) {
			"use strict";
			var b = 1;
			__exports__.b = b;
		})(self.Bee = self.Bee || {});
	`)
}

func TestModuleVariable(t *testing.T) {
	equal(t, newFormatter(t, "module-variable"), virt.Map{
		"a.js": `
			import { b, inc } from './b';
			import c from './c';
			import * as ns from './b';
			inc();
			console.log(b, c, ns.b);
		`,
		"b.js": `
			export var b = 1;
			export function inc() {
				b++;
			}
		`,
		"c.js": `export default 42;`,
	}, "a.js", "bundle.js", `
		(function() {
			"use strict";
			var b$$ = {}, c$$ = {};
			var b$ns = Object.freeze({get b() { return b$$.b; }, get inc() { return b$$.inc; }});
			(function() {
				b$$.inc = inc;
				var b = 1;
				function inc() {
					b++, b$$.b = b;
				}
				b$$.b = b;
			})();
			(function() {
				c$$["default"] = 42;
			})();
			(function() {
				b$$.inc();
				console.log(b$$.b, c$$["default"], b$ns.b);
			})();
		}).call(this);
	`)
}

func TestExportVariable(t *testing.T) {
	equal(t, newFormatter(t, "export-variable"), virt.Map{
		"a.js": `
			import { count, inc } from './b';
			export { count as total } from './b';
			inc();
			console.log(count);
		`,
		"b.js": `
			export var count = 0;
			export function inc() {
				count++;
			}
		`,
	}, "a.js", "bundle.js", `
		(function() {
			"use strict";
			var b$$count, b$$inc;
			(function() {
				b$$inc = inc;
				var count = 0;
				function inc() {
					count++, b$$count = count;
				}
				b$$count = count;
			})();
			(function() {
				b$$inc();
				console.log(b$$count);
			})();
		}).call(this);
	`)
}

func TestBundle(t *testing.T) {
	equal(t, newFormatter(t, "bundle"), virt.Map{
		"a.js": `
			import { b, inc } from './b';
			import c from './c';
			var x = 3;
			inc();
			console.log(b, c, x);
		`,
		"b.js": `
			export var b = 1;
			var x = 2;
			export function inc() {
				b += x;
			}
		`,
		"c.js": `export default function() { return 4; }`,
	}, "a.js", "bundle.js", `
		(function() {
			"use strict";
			var b$$b = 1;
			var b$$x = 2;
			function b$$inc() {
				b$$b += b$$x;
			}
			var c$$default = function() { return 4; };
			var a$$x = 3;
			b$$inc();
			console.log(b$$b, c$$default, a$$x);
		}).call(this);
	`)
}

func TestBundleNamespace(t *testing.T) {
	equal(t, newFormatter(t, "bundle"), virt.Map{
		"a.js": `
			import * as ns from './b';
			console.log(ns.b);
		`,
		"b.js": `
			export var b = 1;
			export function f() {}
		`,
	}, "a.js", "bundle.js", `
		(function() {
			"use strict";
			var b$ns = Object.freeze({get b() { return b$$b; }, get f() { return f; }});
			var b$$b = 1;
			function f() {}
			console.log(b$ns.b);
		}).call(this);
	`)
}

func TestBundleShadowing(t *testing.T) {
	equal(t, newFormatter(t, "bundle"), virt.Map{
		"a.js": `
			import { x } from './b';
			function f(x) {
				return x;
			}
			console.log(f(x), { x });
		`,
		"b.js": `export var x = 1;`,
	}, "a.js", "bundle.js", `
		(function() {
			"use strict";
			var b$$x = 1;
			function f(x) {
				return x;
			}
			console.log(f(b$$x), { x: b$$x });
		}).call(this);
	`)
}

func TestCommonJSLoopReassignment(t *testing.T) {
	equal(t, newFormatter(t, "commonjs"), virt.Map{
		"a.js": `
			export var a = 0;
			export function run() {
				for (a of [1, 2]) {}
			}
		`,
	}, "a.js", "a.js", `
		"use strict";
		exports.run = run;
		var a = 0;
		function run() {
			for (a of [1, 2]) {
				exports.a = a;
			}
		}
		exports.a = a;
	`)
}

func TestModuleVariableLoopReassignment(t *testing.T) {
	equal(t, newFormatter(t, "module-variable"), virt.Map{
		"a.js": `
			export var a;
			for (a in { x: 1 }) {
				console.log(a);
			}
		`,
	}, "a.js", "bundle.js", `
		(function() {
			"use strict";
			var a$$ = {};
			(function() {
				var a;
				for (a in { x: 1 }) {
					a$$.a = a;
					console.log(a);
				}
				a$$.a = a;
			})();
		}).call(this);
	`)
}

func TestExportVariableNames(t *testing.T) {
	equal(t, newFormatter(t, "export-variable"), virt.Map{
		"a.js": `export var a$b = 1, a_b = 2;`,
		"b.js": `
			import { a$b, a_b } from './a';
			console.log(a$b, a_b);
		`,
	}, "b.js", "bundle.js", `
		(function() {
			"use strict";
			var a$$a_b, a$$a_b1;
			(function() {
				var a$b = 1, a_b = 2;
				a$$a_b = a$b;
				a$$a_b1 = a_b;
			})();
			(function() {
				console.log(a$$a_b, a$$a_b1);
			})();
		}).call(this);
	`)
}
