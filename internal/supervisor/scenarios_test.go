// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package supervisor_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/internal/supervisor"
)

const manifestTemplate = `
[plugin]
name = "%s"
description = "scenario"
version = "1.0.0"

[menu]
label = "%s"
items = []

[daemon]
enabled = true
command = "daemon.sh"
`

func writePluginDir(root, id, script string) {
	dir := filepath.Join(root, id)
	Expect(os.MkdirAll(dir, 0o750)).To(Succeed())
	manifest := []byte(fmt.Sprintf(manifestTemplate, id, id))
	Expect(os.WriteFile(filepath.Join(dir, plugin.ManifestFile), manifest, 0o600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "daemon.sh"), []byte(script), 0o700)).To(Succeed()) //nolint:gosec // test script must be executable
}

var _ = Describe("Daemon supervision", func() {
	var (
		root     string
		pidFile  string
		sup      *supervisor.Supervisor
		registry *plugin.Registry
		ctx      context.Context
	)

	BeforeEach(func() {
		if runtime.GOOS == "windows" {
			Skip("daemon scripts require a POSIX shell")
		}
		root = GinkgoT().TempDir()
		pidFile = filepath.Join(GinkgoT().TempDir(), "daemon-pids")
		sup = supervisor.New(
			supervisor.WithPIDFile(pidFile),
			supervisor.WithGracePeriod(300*time.Millisecond),
		)
		registry = plugin.NewRegistry(root, plugin.WithStopper(sup))
		ctx = context.Background()
	})

	AfterEach(func() {
		if registry != nil {
			registry.StopAll()
		}
	})

	Context("when a daemon exits non-zero inside the grace window", func() {
		BeforeEach(func() {
			writePluginDir(root, "crasher", crashScript)
			_, err := registry.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails with the captured stderr and keeps the plugin registered", func() {
			rt, ok := registry.Get("crasher")
			Expect(ok).To(BeTrue())

			err := sup.Start(ctx, rt)
			Expect(err).To(HaveOccurred())

			oopsErr, isOops := oops.AsOops(err)
			Expect(isOops).To(BeTrue())
			Expect(oopsErr.Code()).To(Equal(supervisor.CodeDaemonCrash))
			Expect(oopsErr.Context()).To(HaveKeyWithValue("stderr", "boom"))

			_, stillThere := registry.Get("crasher")
			Expect(stillThere).To(BeTrue())
			Expect(rt.Daemon()).To(BeNil())
		})
	})

	Context("when one of several daemons fails", func() {
		BeforeEach(func() {
			writePluginDir(root, "crasher", crashScript)
			writePluginDir(root, "sleeper", sleepScript)
			_, err := registry.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts the others and records their pids", func() {
			failures := sup.StartAll(ctx, registry.All())
			Expect(failures).To(HaveLen(1))
			Expect(failures).To(HaveKey("crasher"))

			sleeper, _ := registry.Get("sleeper")
			Expect(sleeper.Daemon()).NotTo(BeNil())

			pids := supervisor.RunningPIDs(registry.All())
			Expect(pids).To(ConsistOf(sleeper.Daemon().Pid()))
			Expect(sup.PersistPIDs(pids)).To(Succeed())

			pidsOnDisk, err := supervisor.ReadPIDs(pidFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(pidsOnDisk).To(Equal(pids))
		})
	})

	Context("when the previous host died without stopping its daemons", func() {
		var orphan *supervisor.Process

		BeforeEach(func() {
			writePluginDir(root, "sleeper", sleepScript)
			_, err := registry.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(sup.StartAll(ctx, registry.All())).To(BeEmpty())
			Expect(sup.PersistPIDs(supervisor.RunningPIDs(registry.All()))).To(Succeed())

			rt, _ := registry.Get("sleeper")
			var ok bool
			orphan, ok = rt.Daemon().(*supervisor.Process)
			Expect(ok).To(BeTrue())

			// Forget the runtime without stopping it, as a crashed host would.
			rt.DetachDaemon()
		})

		It("reclaims the orphan on the next recovery pass", func() {
			next := supervisor.New(supervisor.WithPIDFile(pidFile))
			Expect(next.RecoverOrphans(ctx)).To(Succeed())

			Eventually(orphan.Done()).WithTimeout(5 * time.Second).Should(BeClosed())
			Expect(pidFile).NotTo(BeAnExistingFile())
		})
	})

	Context("when reloading", func() {
		BeforeEach(func() {
			writePluginDir(root, "sleeper", sleepScript)
			_, err := registry.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sup.StartAll(ctx, registry.All())).To(BeEmpty())
		})

		It("stops the old generation before swapping runtimes", func() {
			old, _ := registry.Get("sleeper")
			proc, ok := old.Daemon().(*supervisor.Process)
			Expect(ok).To(BeTrue())

			_, err := registry.Reload(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(proc.Exited()).To(BeTrue())
			fresh, _ := registry.Get("sleeper")
			Expect(fresh).NotTo(BeIdenticalTo(old))
			Expect(fresh.Daemon()).To(BeNil())
		})
	})
})
