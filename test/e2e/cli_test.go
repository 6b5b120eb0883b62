// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package e2e_test

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/jsonbind/pkg/versions"
	"github.com/stacklok/jsonbind/test/e2e"
)

var _ = Describe("jsonbind CLI", Label("cli", "e2e"), func() {
	var config *e2e.TestConfig

	BeforeEach(func() {
		config = e2e.NewTestConfig()
		if err := e2e.CheckBinaryAvailable(config); err != nil {
			Skip(err.Error())
		}
	})

	Describe("version", func() {
		It("should print build information as JSON", func() {
			stdout, _ := e2e.NewCommand(config, "version", "--json").ExpectSuccess()

			var info versions.VersionInfo
			Expect(json.Unmarshal([]byte(stdout), &info)).To(Succeed())
			Expect(info.Version).ToNot(BeEmpty())
			Expect(info.Platform).To(ContainSubstring("/"))
		})
	})

	Describe("with a SQLite store", func() {
		var configPath string

		BeforeEach(func() {
			dir := GinkgoT().TempDir()
			configPath = e2e.WriteConfig(dir, fmt.Sprintf(`
adapter:
  type: sqlite
  sqlite:
    path: %s
`, filepath.Join(dir, "objects.db")))
		})

		It("should keep imported objects across invocations", func() {
			By("Importing a company with two employees")
			stdout, _ := e2e.NewCommand(config, "import", "--config", configPath).
				WithStdin(companyJSON("c1", "Acme", "e1", "e2")).
				ExpectSuccess()
			Expect(stdout).To(ContainSubstring("Imported 1 company object(s)"))

			By("Exporting the company")
			stdout, _ = e2e.NewCommand(config, "export", "--config", configPath,
				"--uuid", "c1", "--keys", "name,employees").ExpectSuccess()
			Expect(stdout).To(MatchJSON(fmt.Sprintf(`{"name": "Acme", "employees": [%s, %s]}`,
				employeeJSON("e1", "Employee e1"), employeeJSON("e2", "Employee e2"))))
		})

		It("should delete employees dropped from the company", func() {
			e2e.NewCommand(config, "import", "--config", configPath).
				WithStdin(companyJSON("c1", "Acme", "e1", "e2")).
				ExpectSuccess()

			By("Re-importing the company without e2")
			e2e.NewCommand(config, "import", "--config", configPath).
				WithStdin(companyJSON("c1", "Acme", "e1")).
				ExpectSuccess()

			stdout, _ := e2e.NewCommand(config, "export", "--config", configPath,
				"--kind", "employee", "--keys", "uuid").ExpectSuccess()
			Expect(stdout).To(MatchJSON(`[{"uuid": "e1"}]`))
		})

		It("should leave the store untouched when mapping fails", func() {
			e2e.NewCommand(config, "import", "--config", configPath).
				WithStdin(companyJSON("c1", "Acme", "e1")).
				ExpectSuccess()

			By("Importing a batch whose second company has no primary key")
			_, stderr, _ := e2e.NewCommand(config, "import", "--config", configPath).
				WithStdin(fmt.Sprintf(`[%s, {"name": "Broken"}]`, companyJSON("c2", "Globex", "e2"))).
				ExpectFailure()
			Expect(stderr).To(ContainSubstring("failed to import company document"))

			stdout, _ := e2e.NewCommand(config, "export", "--config", configPath,
				"--keys", "name").ExpectSuccess()
			Expect(stdout).To(MatchJSON(`[{"name": "Acme"}]`))
		})
	})

	Describe("with a Redis store", func() {
		var (
			server *miniredis.Miniredis
			env    []string
		)

		BeforeEach(func() {
			var err error
			server, err = miniredis.Run()
			Expect(err).ToNot(HaveOccurred())
			DeferCleanup(server.Close)

			env = []string{
				"JSONBIND_ADAPTER_TYPE=redis",
				"JSONBIND_ADAPTER_REDIS_ADDR=" + server.Addr(),
				"JSONBIND_ADAPTER_REDIS_KEY_PREFIX=e2e:",
			}
		})

		It("should store objects under the configured prefix", func() {
			e2e.NewCommand(config, "import", "--config", filepath.Join(GinkgoT().TempDir(), "none.yaml")).
				WithEnv(env...).
				WithStdin(companyJSON("c1", "Acme", "e1")).
				ExpectSuccess()

			Expect(server.Exists("e2e:companies:[\"c1\"]")).To(BeTrue())
			Expect(server.Exists("e2e:employees:[\"e1\"]")).To(BeTrue())

			stdout, _ := e2e.NewCommand(config, "export", "--config", filepath.Join(GinkgoT().TempDir(), "none.yaml"),
				"--kind", "employee", "--uuid", "e1", "--format", "yaml", "--keys", "name").
				WithEnv(env...).
				ExpectSuccess()
			Expect(stdout).To(Equal("name: Employee e1\n"))
		})
	})
})
