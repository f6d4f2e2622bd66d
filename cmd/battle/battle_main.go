package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	battleactor "CityCard/internal/battle/actor"
	"CityCard/internal/battle/actors"
	"CityCard/internal/battle/app/port"
	"CityCard/internal/battle/dc"
	"CityCard/internal/battle/infra/persistence/memory"
	reportmongo "CityCard/internal/battle/infra/persistence/mongodb"
	reportmysql "CityCard/internal/battle/infra/persistence/mysql"
	"CityCard/internal/battle/interfaces/handler"
	"CityCard/internal/battle/service"
	"CityCard/internal/battle/snapshot"
	"CityCard/internal/shared/gameconfig/city"
	shareddb "CityCard/internal/shared/infrastructure/db"
	sharedmongo "CityCard/internal/shared/infrastructure/mongo"
	"CityCard/internal/shared/logs"
	"CityCard/internal/shared/metrics"
	"CityCard/internal/shared/serverconfig"
	transporthttp "CityCard/internal/shared/transport/http"
	"CityCard/modules/kit/logx"
)

var (
	cfgPath  = flag.String("config", "", "配置文件路径，缺省从当前目录向上查找 configs/conf.yml")
	snapPath = flag.String("snapshot", "", "对局快照 yaml，缺省取 logic.snapshot")
	rounds   = flag.Int("rounds", 0, "结算回合数，0 表示跑完快照里的全部回合")
	serve    = flag.Bool("serve", false, "结算完后继续提供运维 HTTP 服务，直到收到退出信号")
)

func main() {
	flag.Parse()

	if err := serverconfig.Load(*cfgPath); err != nil {
		panic(err)
	}
	if err := logs.Init("battle", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("conf", serverconfig.Conf))
	log := logx.NewZapLogger(logs.Logger())

	catalog := city.Builtin()
	if path := serverconfig.Conf.Logic.CityData; path != "" {
		c, err := city.Load(path)
		if err != nil {
			logs.Fatal("load city catalog failed", zap.String("path", path), zap.Error(err))
		}
		catalog = c
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBattleMetrics("citycard", reg)

	driver := serverconfig.Conf.Storage.Driver
	repo, closeRepo, err := openRepository(driver)
	if err != nil {
		logs.Fatal("open report repository failed", zap.String("driver", driver), zap.Error(err))
	}
	defer closeRepo()

	reports := dc.NewReportDC(repo,
		dc.WithLogger(log),
		dc.WithMetrics(m, driver),
		dc.WithRetryBackoff(serverconfig.Conf.Storage.RetryBackoff),
	)
	rt := battleactor.NewRuntime(actors.Deps{
		// 每个房间建引擎时读最新的对战参数，热更新只影响之后新建的房间
		NewEngine: func(room string) *service.Engine {
			return service.NewEngine(
				service.WithRules(service.FromConfig(serverconfig.Battle())),
				service.WithCatalog(catalog),
				service.WithLogger(log),
				service.WithMetrics(m),
			)
		},
		Reports: reports,
		Log:     log,
	}, serverconfig.Battle().AskTimeout)

	ops := serverconfig.Conf.OpsServer
	var srv *transporthttp.Server
	if ops.Port > 0 {
		gin.SetMode(gin.ReleaseMode)
		engine := gin.New()
		engine.Use(gin.Recovery())
		srv = transporthttp.NewHttpServer(fmt.Sprintf("%s:%d", ops.Host, ops.Port), engine, log, reg)
		handler.NewReport(repo, rt, log).Register(srv.Group())
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				logs.Error("ops server stopped", zap.Error(err))
			}
		}()
		logs.Info("ops server started", zap.String("host", ops.Host), zap.Int("port", ops.Port))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := *snapPath
	if path == "" {
		path = serverconfig.Conf.Logic.Snapshot
	}
	if path != "" {
		if err := play(ctx, rt, path, *rounds); err != nil {
			logs.Error("play snapshot failed", zap.String("path", path), zap.Error(err))
		}
	}

	if *serve && srv != nil {
		<-ctx.Done()
		logs.Info("收到退出信号，准备优雅退出")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}
	rt.Shutdown()
	if err := reports.Close(shutdownCtx); err != nil {
		logs.Warn("report dc close timeout", zap.Int("pending", reports.Pending()), zap.Error(err))
	}
}

// play 按快照建房并依次结算各回合，战报打印到标准输出。
func play(ctx context.Context, rt *battleactor.Runtime, path string, limit int) error {
	snap, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	st := snap.State
	room := st.Room
	if room == "" {
		room = "local"
	}
	if _, err := rt.CreateRoom(ctx, room, st.Round, st.Players, snap.Effects); err != nil {
		return err
	}

	n := len(snap.Rounds)
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report, err := rt.ResolveRound(ctx, room, snap.Rounds[i])
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(raw))
	}
	return nil
}

func openRepository(driver string) (port.ReportRepository, func(), error) {
	switch driver {
	case "mongodb":
		client, err := sharedmongo.Open(serverconfig.Conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		repo := reportmongo.NewReportRepository(client.Database(serverconfig.Conf.MongoDB.Database))
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	case "mysql":
		gdb, err := shareddb.Open(serverconfig.Conf.MySQL)
		if err != nil {
			return nil, nil, err
		}
		repo := reportmysql.NewReportRepository(gdb)
		if err := repo.AutoMigrate(); err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	default:
		return memory.NewReportRepository(), func() {}, nil
	}
}
