package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/codegauge/internal/config"
	"github.com/standardbeagle/codegauge/internal/types"
)

type resolveCase struct {
	name     string
	importer string
	target   string
	kind     types.ReferenceKind
	want     []string
	local    bool
}

func runCases(t *testing.T, r *Resolver, lang types.Language, cases []resolveCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind := tc.kind
			if kind == "" {
				kind = types.RefImport
			}
			got := r.Resolve(types.ReferenceRecord{File: tc.importer, Target: tc.target, Kind: kind}, lang)
			assert.Equal(t, tc.want, got.Targets)
			assert.Equal(t, tc.local, got.Local)
		})
	}
}

func TestResolve_JavaScript(t *testing.T) {
	r := New([]string{"src/a.ts", "src/b.ts", "src/util/index.ts", "lib/c.js"}, config.Manifest{NodePackage: "@acme/app"})

	runCases(t, r, types.LangTypeScript, []resolveCase{
		{"sibling", "src/a.ts", "./b", "", []string{"src/b.ts"}, true},
		{"directory index", "src/a.ts", "./util", "", []string{"src/util/index.ts"}, true},
		{"emitted extension", "src/a.ts", "./b.js", "", []string{"src/b.ts"}, true},
		{"parent", "src/a.ts", "../lib/c", "", []string{"lib/c.js"}, true},
		{"missing", "src/a.ts", "./nope", "", nil, true},
		{"escapes root", "src/a.ts", "../../etc/x", "", nil, true},
		{"bare package", "src/a.ts", "react", "", nil, false},
		{"self package", "lib/c.js", "@acme/app/src/b", "", []string{"src/b.ts"}, true},
	})
}

func TestResolve_Go(t *testing.T) {
	files := []string{
		"main.go",
		"internal/store/store.go",
		"internal/store/store_test.go",
		"internal/store/cache.go",
	}

	t.Run("with module path", func(t *testing.T) {
		r := New(files, config.Manifest{GoModule: "example.com/app"})
		runCases(t, r, types.LangGo, []resolveCase{
			{"package", "main.go", "example.com/app/internal/store", "", []string{"internal/store/store.go", "internal/store/cache.go"}, true},
			{"module root", "internal/store/store.go", "example.com/app", "", []string{"main.go"}, true},
			{"missing package", "main.go", "example.com/app/internal/nope", "", nil, true},
			{"standard library", "main.go", "fmt", "", nil, false},
			{"third party", "main.go", "github.com/sirupsen/logrus", "", nil, false},
		})
	})

	t.Run("without module path", func(t *testing.T) {
		r := New(files, config.Manifest{})
		runCases(t, r, types.LangGo, []resolveCase{
			{"suffix match", "main.go", "github.com/acme/app/internal/store", "", []string{"internal/store/store.go", "internal/store/cache.go"}, true},
			{"standard library", "main.go", "encoding/json", "", nil, false},
		})
	})
}

func TestResolve_Python(t *testing.T) {
	r := New([]string{"pkg/__init__.py", "pkg/models.py", "pkg/sub/helpers.py", "app.py"}, config.Manifest{PythonPackage: "pkg"})

	runCases(t, r, types.LangPython, []resolveCase{
		{"parent relative", "pkg/sub/helpers.py", "..models", "", []string{"pkg/models.py"}, true},
		{"name from package", "pkg/models.py", ".thing", "", []string{"pkg/__init__.py"}, true},
		{"relative missing", "pkg/sub/helpers.py", ".missing", "", nil, true},
		{"above root", "app.py", "..models", "", nil, true},
		{"absolute module", "app.py", "pkg.models", "", []string{"pkg/models.py"}, true},
		{"absolute package", "app.py", "pkg", "", []string{"pkg/__init__.py"}, true},
		{"own package missing", "app.py", "pkg.gone", "", nil, true},
		{"standard library", "app.py", "os.path", "", nil, false},
	})
}

func TestResolve_Rust(t *testing.T) {
	r := New([]string{"src/main.rs", "src/config.rs", "src/net/mod.rs", "src/net/client.rs"}, config.Manifest{CrateName: "tool"})

	runCases(t, r, types.LangRust, []resolveCase{
		{"mod file", "src/main.rs", "config", types.RefMod, []string{"src/config.rs"}, true},
		{"mod directory", "src/main.rs", "net", types.RefMod, []string{"src/net/mod.rs"}, true},
		{"mod missing", "src/main.rs", "gone", types.RefMod, nil, true},
		{"crate item", "src/net/client.rs", "crate::config::Settings", types.RefUse, []string{"src/config.rs"}, true},
		{"crate by name", "src/net/client.rs", "tool::config", types.RefUse, []string{"src/config.rs"}, true},
		{"super item", "src/net/client.rs", "super::Pool", types.RefUse, []string{"src/net/mod.rs"}, true},
		{"self module", "src/net/mod.rs", "self::client::Client", types.RefUse, []string{"src/net/client.rs"}, true},
		{"external crate", "src/main.rs", "std::fmt", types.RefUse, nil, false},
	})
}

func TestResolve_CInclude(t *testing.T) {
	r := New([]string{"src/main.c", "src/util.h", "include/util.h", "include/config/defaults.h"}, config.Manifest{})

	runCases(t, r, types.LangC, []resolveCase{
		{"same directory wins", "src/main.c", "util.h", types.RefInclude, []string{"src/util.h"}, true},
		{"include directory", "src/main.c", "config/defaults.h", types.RefInclude, []string{"include/config/defaults.h"}, true},
		{"system header", "src/main.c", "<stdio.h>", types.RefInclude, nil, false},
		{"missing header", "src/main.c", "gone.h", types.RefInclude, nil, true},
	})
}

func TestResolve_JavaFamily(t *testing.T) {
	r := New([]string{
		"src/main/java/com/acme/App.java",
		"src/main/java/com/acme/util/Strings.java",
		"src/main/java/com/acme/util/Numbers.java",
	}, config.Manifest{})

	runCases(t, r, types.LangJava, []resolveCase{
		{"class", "src/main/java/com/acme/App.java", "com.acme.util.Strings", "", []string{"src/main/java/com/acme/util/Strings.java"}, true},
		{"static member", "src/main/java/com/acme/App.java", "com.acme.util.Strings.trim", "", []string{"src/main/java/com/acme/util/Strings.java"}, true},
		{"wildcard", "src/main/java/com/acme/App.java", "com.acme.util.*", "",
			[]string{"src/main/java/com/acme/util/Strings.java", "src/main/java/com/acme/util/Numbers.java"}, true},
		{"platform", "src/main/java/com/acme/App.java", "java.util.List", "", nil, false},
	})
}

func TestResolve_Namespaces(t *testing.T) {
	t.Run("csharp directory", func(t *testing.T) {
		r := New([]string{"Program.cs", "Services/Billing.cs", "Services/Mailer.cs"}, config.Manifest{})
		runCases(t, r, types.LangCSharp, []resolveCase{
			{"namespace", "Program.cs", "MyApp.Services", types.RefUse, []string{"Services/Billing.cs", "Services/Mailer.cs"}, true},
			{"framework", "Program.cs", "System.Linq", types.RefUse, nil, false},
		})
	})

	t.Run("php psr-4", func(t *testing.T) {
		r := New([]string{"src/Http/Controller.php", "public/index.php", "public/bootstrap.php"}, config.Manifest{})
		runCases(t, r, types.LangPHP, []resolveCase{
			{"use", "public/index.php", `App\Http\Controller`, types.RefUse, []string{"src/Http/Controller.php"}, true},
			{"include", "public/index.php", "./bootstrap.php", types.RefRequire, []string{"public/bootstrap.php"}, true},
			{"vendor", "public/index.php", `Psr\Log\LoggerInterface`, types.RefUse, nil, false},
		})
	})

	t.Run("lua modules", func(t *testing.T) {
		r := New([]string{"app/init.lua", "app/util.lua", "main.lua"}, config.Manifest{})
		runCases(t, r, types.LangLua, []resolveCase{
			{"module", "main.lua", "app.util", types.RefRequire, []string{"app/util.lua"}, true},
			{"package", "main.lua", "app", types.RefRequire, []string{"app/init.lua"}, true},
		})
	})

	t.Run("shell source from root", func(t *testing.T) {
		r := New([]string{"bin/run.sh", "lib/common.sh"}, config.Manifest{})
		runCases(t, r, types.LangShell, []resolveCase{
			{"root relative", "bin/run.sh", "./lib/common.sh", types.RefInclude, []string{"lib/common.sh"}, true},
		})
	})
}

func TestResolve_TieBreaks(t *testing.T) {
	r := New([]string{"b/main.py", "b/util.py", "a/util.py", "c/main.py"}, config.Manifest{})

	runCases(t, r, types.LangPython, []resolveCase{
		{"nearest directory", "b/main.py", "util", "", []string{"b/util.py"}, true},
		{"lexicographic when equally near", "c/main.py", "util", "", []string{"a/util.py"}, true},
	})

	// Same input, same answer
	first := r.Resolve(types.ReferenceRecord{File: "c/main.py", Target: "util"}, types.LangPython)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Resolve(types.ReferenceRecord{File: "c/main.py", Target: "util"}, types.LangPython))
	}
}

func TestSuggest(t *testing.T) {
	r := New([]string{"src/app.ts", "src/helpers.ts", "src/widgets/button.tsx"}, config.Manifest{})

	assert.Equal(t, "src/helpers.ts", r.Suggest("./helpr", "src/app.ts", types.LangTypeScript))
	assert.Equal(t, "src/widgets/button.tsx", r.Suggest("./widgets/buton", "src/app.ts", types.LangTypeScript))
	assert.Equal(t, "", r.Suggest("./completely-unrelated", "src/app.ts", types.LangTypeScript))
	assert.Equal(t, "", r.Suggest("", "src/app.ts", types.LangTypeScript))
}

func TestSuggestionKey(t *testing.T) {
	assert.Equal(t, "helpers", suggestionKey("../lib/helpers.js"))
	assert.Equal(t, "models", suggestionKey("..models"))
	assert.Equal(t, "Settings", suggestionKey("crate::config::Settings"))
	assert.Equal(t, "Controller", suggestionKey(`App\Http\Controller`))
	assert.Equal(t, "stdio", suggestionKey("<stdio.h>"))
}
