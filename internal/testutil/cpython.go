package testutil

import "testing"

// CPythonTree writes the subset of a CPython checkout that the built-in
// manifest refers to and returns its root.
func CPythonTree(t testing.TB) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"Lib/importlib/__init__.py":            "",
		"Lib/importlib/_bootstrap.py":          "# bootstrap\n",
		"Lib/importlib/_bootstrap_external.py": "# bootstrap external\n",
		"Lib/importlib/util.py":                "",
		"Lib/importlib/machinery.py":           "",
		"Lib/zipimport.py":                     "",
		"Lib/abc.py":                           "",
		"Lib/codecs.py":                        "",
		"Lib/io.py":                            "",
		"Lib/_collections_abc.py":              "",
		"Lib/_sitebuiltins.py":                 "",
		"Lib/genericpath.py":                   "",
		"Lib/ntpath.py":                        "",
		"Lib/posixpath.py":                     "",
		"Lib/os.py":                            "",
		"Lib/site.py":                          "",
		"Lib/stat.py":                          "",
		"Lib/runpy.py":                         "",
		"Lib/__hello__.py":                     "print('Hello world!')\n",
		"Lib/__phello__/__init__.py":           "",
		"Lib/__phello__/spam.py":               "",
		"Lib/__phello__/ham/__init__.py":       "",
		"Lib/__phello__/ham/eggs.py":           "",
		"Tools/freeze/flag.py":                 "initialized = True\n",
		"Python/frozen_modules/":               "",
		"Python/deepfreeze/":                   "",
	})
	return root
}
