package app

import (
	"market-dashboard/src/config"
	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/data_source/yahoo"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/pipeline"
	"market-dashboard/src/storage"
	"market-dashboard/src/utils"
)

// Components is everything a binary needs to serve or run render cycles.
type Components struct {
	Network   interfaces.INetworkManager
	Sources   *datasource.MultiSourceManager
	Images    interfaces.IImageFetcher
	Scheduler *utils.MarketScheduler
	Recorder  interfaces.IRenderRecorder
	Dashboard *pipeline.Dashboard
}

// -----------------------------------------------------------------------------

// Setup wires the components described by conf.
func Setup(conf *config.Config, appLogger *logger.Logger) (*Components, error) {
	netMgr := SetupNetwork(conf.MConfig, appLogger)

	sources, err := SetupDataSources(conf.MConfig, appLogger, netMgr)
	if err != nil {
		return nil, err
	}

	recorder, err := SetupRecorder(conf.MConfig, appLogger)
	if err != nil {
		return nil, err
	}

	scheduler := utils.NewMarketScheduler(appLogger.Named("MarketScheduler"))
	dashboard := pipeline.NewDashboard(conf.Dashboard, sources, nil, scheduler, recorder, appLogger.Named("Pipeline"))

	return &Components{
		Network:   netMgr,
		Sources:   sources,
		Images:    network.NewImageFetcher(netMgr),
		Scheduler: scheduler,
		Recorder:  recorder,
		Dashboard: dashboard,
	}, nil
}

// -----------------------------------------------------------------------------

// SetupRecorder opens the render journal selected by storage.db_type
func SetupRecorder(conf *models.MConfig, appLogger *logger.Logger) (interfaces.IRenderRecorder, error) {
	recorder, err := storage.NewRecorder(conf, appLogger.Named("RenderJournal"))
	if err != nil {
		appLogger.Error("Failed to init render journal: %v", err)
		return nil, err
	}
	if err := recorder.CleanupOldData(); err != nil {
		appLogger.Warning("Render journal cleanup failed: %v", err)
	}
	return recorder, nil
}

// -----------------------------------------------------------------------------

// SetupNetwork initializes the network manager
func SetupNetwork(conf *models.MConfig, appLogger *logger.Logger) interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(conf, appLogger.Named("NetworkManager"))
}

// -----------------------------------------------------------------------------

// SetupDataSources creates one Yahoo source per configured base URL, primary first,
// and wraps them in a failover manager.
func SetupDataSources(conf *models.MConfig, appLogger *logger.Logger, netMgr interfaces.INetworkManager) (*datasource.MultiSourceManager, error) {
	appLogger.Info("Initializing data sources...")
	multiSource := datasource.NewMultiSourceManager(nil, appLogger.Named("MultiSourceManager"))

	baseURLs := append([]string{conf.Provider.BaseURL}, conf.Provider.FallbackBaseURLs...)
	for _, base := range baseURLs {
		if base == "" {
			continue
		}
		pc := conf.Provider
		pc.BaseURL = base
		s := yahoo.NewYahooFinanceSource(pc, netMgr, appLogger.Named("YahooFinanceSource"))
		if err := multiSource.AddSource(s); err != nil {
			appLogger.Warning("Skipping source %s: %v", s.Name(), err)
		}
	}

	if len(multiSource.GetAllSources()) == 0 {
		return nil, helpers.NewConfigurationError("no valid data sources", nil)
	}
	return multiSource, nil
}
