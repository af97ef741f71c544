package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/types"
)

func TestRuby(t *testing.T) {
	src := `require 'json'
require_relative 'lib/helper'

module Shop
  class Cart
    def total(items)
      sum = 0
      items.each do |i|
        sum += i.price if i.price > 0
      end
      sum
    end

    def empty? = items.empty?

    def checkout
      return false unless valid?
      case state
      when :open then true
      else false
      end
    end
  end
end
`
	unit := parse(t, "lib/cart.rb", src)
	assert.Equal(t, types.FidelityApproximate, unit.Fidelity)
	assert.Equal(t, []string{"Cart.total", "Cart.empty?", "Cart.checkout"}, functionNames(unit))
	assert.Equal(t, map[string]int{"Cart.total": 1, "Cart.empty?": 0, "Cart.checkout": 2}, decisions(unit))
	assert.Equal(t, 6, unit.Functions[0].Line)
	assert.Equal(t, 1, unit.Classes)
	assert.Equal(t, []string{"json", "./lib/helper"}, targets(unit))
	assert.Equal(t, types.RefRequire, unit.References[0].Kind)
}

func TestKotlin(t *testing.T) {
	src := `package app

import app.util.Strings
import kotlinx.coroutines.*

class Greeter(private val name: String) {
    fun greet(loud: Boolean): String {
        return if (loud && name.isNotEmpty()) name.uppercase() else name
    }

    fun mood(score: Int) = when {
        score > 5 -> "good"
        else -> "bad"
    }
}

fun main() {
    for (i in 0..3) println(i)
}
`
	unit := parse(t, "src/Greeter.kt", src)
	assert.Equal(t, []string{"Greeter.greet", "Greeter.mood", "main"}, functionNames(unit))
	assert.Equal(t, map[string]int{"Greeter.greet": 2, "Greeter.mood": 1, "main": 1}, decisions(unit))
	assert.Equal(t, 1, unit.Classes)
	assert.Equal(t, []string{"app.util.Strings", "kotlinx.coroutines.*"}, targets(unit))
}

func TestKotlin_WildcardImportKeepsStar(t *testing.T) {
	unit := parse(t, "app/Main.kt", "import app.util.*\nimport app.model.User as U\n\nfun main() {}\n")
	assert.Equal(t, []string{"app.util.*", "app.model.User"}, targets(unit))
}

func TestKotlin_AbstractMembers(t *testing.T) {
	src := `interface Repo {
    fun find(id: Int): String?
    fun all(): List<String>
}

fun use(r: Repo) {
    if (r.all().isEmpty()) return
}
`
	unit := parse(t, "Repo.kt", src)
	assert.Equal(t, []string{"Repo.find", "Repo.all", "use"}, functionNames(unit))
	assert.Equal(t, map[string]int{"Repo.find": 0, "Repo.all": 0, "use": 1}, decisions(unit))
}

func TestSwift(t *testing.T) {
	src := `import Foundation

struct Account {
    var balance: Int

    init(balance: Int) {
        self.balance = balance
    }

    func describe() -> String {
        switch balance {
        case 0:
            return "empty"
        case 1...10:
            return "low"
        default:
            return balance > 100 ? "rich" : "ok"
        }
    }

    class func make() -> Account { Account(balance: 0) }
}
`
	unit := parse(t, "Sources/Account.swift", src)
	assert.Equal(t, []string{"Account.init", "Account.describe", "Account.make"}, functionNames(unit))
	assert.Equal(t, map[string]int{"Account.init": 0, "Account.describe": 3, "Account.make": 0}, decisions(unit))
	assert.Equal(t, 1, unit.Classes)
	assert.Equal(t, []string{"Foundation"}, targets(unit))
}

func TestScala(t *testing.T) {
	src := `import scala.util.Try
import app.models._

case class User(name: String)

object Users {
  def label(u: User): String = u.name match {
    case "" => "anonymous"
    case n if n.length > 10 => "long"
    case _ => "short"
  }

  def safe(s: String): Int = {
    try s.toInt catch {
      case _: NumberFormatException => 0
    }
  }
}
`
	unit := parse(t, "src/Users.scala", src)
	assert.Equal(t, []string{"Users.label", "Users.safe"}, functionNames(unit))
	assert.Equal(t, map[string]int{"Users.label": 3, "Users.safe": 1}, decisions(unit))
	assert.Equal(t, 2, unit.Classes)
	assert.Equal(t, []string{"scala.util.Try", "app.models"}, targets(unit))
}

func TestLua(t *testing.T) {
	src := `local json = require("json")
local M = {}

function M.parse(s)
  if s == nil or s == "" then
    return nil
  end
  for i = 1, #s do
    local c = s:sub(i, i)
  end
  return s
end

function M:render()
  return table.concat(self, ",", 1)
end

local helper = function(x) return x and 1 end

return M
`
	unit := parse(t, "lua/m.lua", src)
	assert.Equal(t, []string{"M.parse", "M.render", "helper"}, functionNames(unit))
	assert.Equal(t, map[string]int{"M.parse": 3, "M.render": 0, "helper": 1}, decisions(unit))
	assert.Equal(t, []string{"json"}, targets(unit))
}

func TestShell(t *testing.T) {
	src := `#!/bin/bash
source ./lib/common.sh

usage() {
  echo "usage: ${0##*/}"
}

function main {
  if [ -z "$1" ] && [ -n "$2" ]; then
    usage
  fi
  case "$1" in
    start|run) echo go ;;
    *) echo no ;;
  esac
  cat <<EOF
{ unbalanced in heredoc
EOF
}
`
	unit := parse(t, "bin/run.sh", src)
	assert.Equal(t, []string{"usage", "main"}, functionNames(unit))
	assert.Equal(t, map[string]int{"usage": 0, "main": 3}, decisions(unit))
	assert.Equal(t, []string{"./lib/common.sh"}, targets(unit))
	assert.Equal(t, types.RefInclude, unit.References[0].Kind)
}

func TestHeuristic_TopLevelDecisionsDropped(t *testing.T) {
	unit := parse(t, "script.rb", "puts 1 if ARGV.empty?\n")
	assert.Empty(t, unit.Functions)
}

func TestHeuristic_Unbalanced(t *testing.T) {
	tests := []struct {
		path  string
		src   string
		line  int
		token string
	}{
		{"open.kt", "fun f() {\n    if (x) {\n    }\n", 1, "{"},
		{"extra.rb", "def f\nend\nend\n", 3, "end"},
		{"close.swift", "func f() {\n}\n}\n", 3, "}"},
		{"open.lua", "function f()\n  if x then\n  end\n", 1, "block"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := Default().Parse(context.Background(), sourceFile(tt.path, tt.src))
			require.Error(t, err)

			var parseErr *cgerrors.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Equal(t, tt.token, parseErr.Token)
		})
	}
}
