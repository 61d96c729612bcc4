package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})

			Convey("Then the registry should hold its collectors", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Counters and gauges register eagerly; only populated
				// metrics are gathered, so just check for no failure.
				So(families, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When options carry zero values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRegistry(nil),
				WithRegistry(registry),
			)

			Convey("Then defaults should be preserved", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "gsq")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording intake metrics", func() {
			So(func() {
				RecordSubmissionReceived()
				RecordSubmissionDuplicate()
				RecordSubmissionRejected()
				RecordNormalizationError("payload")
				RecordLegacyPayload()
			}, ShouldNotPanic)
		})

		Convey("When recording scoring and export metrics", func() {
			So(func() {
				RecordScoringLatency(1.5)
				RecordProfileComputed()
				RecordScoringError()
				RecordExportBuilt()
				RecordExportValidationFailure()
			}, ShouldNotPanic)
		})

		Convey("When recording persistence and queue metrics", func() {
			So(func() {
				RecordStoreWriteLatency(0.2)
				RecordStoreError()
				UpdateTotalAssessments(3)
				UpdateQueueSize(5)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.05)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
			}, ShouldNotPanic)
		})

		Convey("When recording worker, HTTP and system metrics", func() {
			So(func() {
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(2.0)
				RecordWorkerError()
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/healthz", "GET", "200", 0.7)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
			}, ShouldNotPanic)
		})

		Convey("When reading the registry", func() {
			registry := GetRegistry()

			Convey("Then it should expose gathered metrics", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
