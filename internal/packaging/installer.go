package packaging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Installer handles installing and uninstalling hwcountd as a systemd service.
type Installer struct {
	cfg     InstallConfig
	systemd SystemdController
	root    RootChecker
	logger  *slog.Logger
}

// NewInstaller creates a new Installer with defaults applied.
func NewInstaller(cfg InstallConfig, systemd SystemdController, root RootChecker, logger *slog.Logger) *Installer {
	cfg.ApplyDefaults()
	return &Installer{
		cfg:     cfg,
		systemd: systemd,
		root:    root,
		logger:  logger.With("component", "packaging"),
	}
}

// Install installs hwcountd as a systemd service. An existing config file is
// left untouched.
func (ins *Installer) Install() error {
	if !ins.root.IsRoot() {
		return errors.New("packaging: install requires root privileges")
	}
	if !ins.systemd.IsAvailable() {
		return errors.New("packaging: systemd is not available")
	}
	if err := ins.cfg.Validate(); err != nil {
		return err
	}

	for _, dir := range []string{ins.cfg.ConfigDir, ins.cfg.RunDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("packaging: create directory %s: %w", dir, err)
		}
		ins.logger.Info("directory created", "path", dir)
	}

	if err := ins.copyBinary(); err != nil {
		return err
	}

	configPath := ins.cfg.ConfigPath()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeFileAtomic(configPath, []byte(GenerateDefaultConfig(ins.cfg)), 0o644); err != nil {
			return fmt.Errorf("packaging: write config: %w", err)
		}
		ins.logger.Info("default config written", "path", configPath, "backend", ins.cfg.Backend)
	} else if err == nil {
		ins.logger.Info("existing config preserved", "path", configPath)
	} else {
		return fmt.Errorf("packaging: stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ins.cfg.UnitFilePath), 0o755); err != nil {
		return fmt.Errorf("packaging: create unit file directory: %w", err)
	}
	if err := writeFileAtomic(ins.cfg.UnitFilePath, []byte(GenerateUnitFile(ins.cfg)), 0o644); err != nil {
		return fmt.Errorf("packaging: write unit file: %w", err)
	}
	ins.logger.Info("unit file written", "path", ins.cfg.UnitFilePath)

	if err := ins.systemd.DaemonReload(); err != nil {
		return fmt.Errorf("packaging: daemon-reload: %w", err)
	}
	ins.logger.Info("systemd daemon reloaded")

	if ins.cfg.Enable {
		if err := ins.systemd.Enable(ins.cfg.ServiceName); err != nil {
			return fmt.Errorf("packaging: enable service: %w", err)
		}
		ins.logger.Info("service enabled", "service", ins.cfg.ServiceName)
	}
	return nil
}

// Uninstall removes the hwcountd systemd service. If purge is true, the
// config and runtime directories are also removed.
func (ins *Installer) Uninstall(purge bool) error {
	if !ins.root.IsRoot() {
		return errors.New("packaging: uninstall requires root privileges")
	}

	if _, err := os.Stat(ins.cfg.UnitFilePath); errors.Is(err, os.ErrNotExist) {
		ins.logger.Info("hwcountd is not installed, nothing to do")
		return nil
	}

	// The service may not be running or enabled.
	if ins.systemd.IsActive(ins.cfg.ServiceName) {
		if err := ins.systemd.Stop(ins.cfg.ServiceName); err != nil {
			ins.logger.Info("stop service", "error", err)
		}
	}
	if err := ins.systemd.Disable(ins.cfg.ServiceName); err != nil {
		ins.logger.Info("disable service", "error", err)
	}

	if err := os.Remove(ins.cfg.UnitFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("packaging: remove unit file: %w", err)
	}
	ins.logger.Info("unit file removed", "path", ins.cfg.UnitFilePath)

	if err := ins.systemd.DaemonReload(); err != nil {
		return fmt.Errorf("packaging: daemon-reload: %w", err)
	}

	if err := os.Remove(ins.cfg.BinaryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("packaging: remove binary: %w", err)
	}
	ins.logger.Info("binary removed", "path", ins.cfg.BinaryPath)

	if purge {
		for _, dir := range []string{ins.cfg.RunDir, ins.cfg.ConfigDir} {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("packaging: remove directory %s: %w", dir, err)
			}
			ins.logger.Info("directory removed", "path", dir)
		}
	}
	return nil
}

func (ins *Installer) copyBinary() error {
	srcPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("packaging: resolve executable path: %w", err)
	}
	srcPath, err = filepath.EvalSymlinks(srcPath)
	if err != nil {
		return fmt.Errorf("packaging: resolve symlinks: %w", err)
	}

	dstPath := ins.cfg.BinaryPath
	if srcPath == dstPath {
		ins.logger.Info("binary already at install path, skipping copy", "path", dstPath)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("packaging: create binary directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("packaging: open source binary: %w", err)
	}
	defer src.Close()

	// A running binary cannot be truncated in place, so write beside it and rename.
	tmpPath := dstPath + ".new"
	dst, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("packaging: create destination binary: %w", err)
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("packaging: copy binary: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("packaging: copy binary: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return fmt.Errorf("packaging: install binary: %w", err)
	}

	ins.logger.Info("binary installed", "src", srcPath, "dst", dstPath)
	return nil
}

// writeFileAtomic writes data to path through a temp file and rename so
// readers never observe a partially written file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
